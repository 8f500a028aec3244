package orchestrator

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"chatcli/internal/chat"
	"chatcli/internal/session"
)

// CommandResult is the outcome of a slash command. Rerun asks the REPL to
// drive the agent loop again without new user input.
type CommandResult struct {
	Reply string
	Exit  bool
	Rerun bool
}

// ParseSlash splits "/cmd rest" into its parts; ok is false for plain input.
func ParseSlash(input string) (command, args string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	rest := strings.TrimPrefix(trimmed, "/")
	parts := strings.SplitN(rest, " ", 2)
	command = strings.ToLower(strings.TrimSpace(parts[0]))
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return command, args, true
}

// HandleCommand executes one slash command against the session state.
func (o *Orchestrator) HandleCommand(command, args string) CommandResult {
	switch command {
	case "help":
		return CommandResult{Reply: helpText}
	case "exit":
		return CommandResult{Exit: true}
	case "save":
		return o.cmdSave(args)
	case "todo":
		return o.cmdTodo(args)
	case "perms":
		return o.cmdPerms(args)
	case "log":
		return o.cmdLog(args)
	case "debug":
		return o.cmdDebug(args)
	case "model":
		return o.cmdModel(args)
	case "retry":
		return o.cmdRetry()
	case "edit":
		return o.cmdEdit(args)
	case "reset":
		return o.cmdReset()
	case "restart":
		o.gate.Clear()
		return CommandResult{Reply: ClearScreen + "tool state cleared"}
	case "clear":
		return CommandResult{Reply: ClearScreen}
	case "diff":
		return o.cmdDiff(args)
	default:
		return CommandResult{Reply: "unknown command /" + command + " (try /help)"}
	}
}

const helpText = `Commands:
  /help                                 show this help
  /exit                                 quit
  /save <file>                          set session file and persist now
  /todo list|add <title>[|desc]|update <id> <title>[|desc]|complete <id>|delete <id>
  /perms list|clear                     show or clear granted permissions
  /log on|off|set <file>                transcript logging
  /debug on|off                         raw tool payloads in the transcript
  /model [set <id>|temp <n>|maxtokens <n>|systemmsg <text>|systemclear]
  /retry                                drop the last answer and re-run
  /edit <text>                          replace the last user message, truncate after it, re-run
  /reset                                clear conversation (keeps system message), permissions, flags
  /restart                              clear screen and tool state, keep conversation
  /clear                                clear screen
  /diff [on|off|threshold <n>|maxlines <n>]

While a request is running: Esc or Ctrl+C cancels it.`

func (o *Orchestrator) cmdSave(args string) CommandResult {
	if strings.TrimSpace(args) == "" {
		return CommandResult{Reply: "usage: /save <file>"}
	}
	if o.store == nil {
		return CommandResult{Reply: "no session store configured"}
	}
	path := o.store.SetPath(args)
	o.store.SetMessages(o.messages)
	if err := o.store.Save(); err != nil {
		return CommandResult{Reply: "save failed: " + err.Error()}
	}
	return CommandResult{Reply: "session saved to " + path}
}

func (o *Orchestrator) cmdTodo(args string) CommandResult {
	if o.store == nil {
		return CommandResult{Reply: "no session store configured"}
	}
	sub, rest := splitWord(args)
	switch sub {
	case "", "list":
		items := o.store.Todos()
		if len(items) == 0 {
			return CommandResult{Reply: "no todo items"}
		}
		var b strings.Builder
		for _, item := range items {
			marker := "[ ]"
			if item.Status == session.TodoCompleted {
				marker = "[x]"
			}
			fmt.Fprintf(&b, "%s #%d %s", marker, item.ID, item.Title)
			if item.Description != "" {
				fmt.Fprintf(&b, " - %s", item.Description)
			}
			b.WriteByte('\n')
		}
		return CommandResult{Reply: strings.TrimRight(b.String(), "\n")}
	case "add":
		title, desc := splitTitleDesc(rest)
		if title == "" {
			return CommandResult{Reply: "usage: /todo add <title>[|description]"}
		}
		item := o.store.AddTodo(title, desc)
		o.saveAfterMutation()
		return CommandResult{Reply: fmt.Sprintf("added todo #%d", item.ID)}
	case "update":
		idText, rest := splitWord(rest)
		id, err := strconv.Atoi(idText)
		if err != nil {
			return CommandResult{Reply: "usage: /todo update <id> <title>[|description]"}
		}
		title, desc := splitTitleDesc(rest)
		if _, err := o.store.UpdateTodo(id, title, desc); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		o.saveAfterMutation()
		return CommandResult{Reply: fmt.Sprintf("updated todo #%d", id)}
	case "complete":
		id, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return CommandResult{Reply: "usage: /todo complete <id>"}
		}
		if _, err := o.store.CompleteTodo(id); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		o.saveAfterMutation()
		return CommandResult{Reply: fmt.Sprintf("completed todo #%d", id)}
	case "delete":
		id, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return CommandResult{Reply: "usage: /todo delete <id>"}
		}
		if err := o.store.DeleteTodo(id); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		o.saveAfterMutation()
		return CommandResult{Reply: fmt.Sprintf("deleted todo #%d", id)}
	default:
		return CommandResult{Reply: "usage: /todo list|add|update|complete|delete"}
	}
}

func (o *Orchestrator) cmdPerms(args string) CommandResult {
	switch strings.TrimSpace(args) {
	case "", "list":
		grants := o.gate.Grants()
		if len(grants) == 0 {
			return CommandResult{Reply: "no permissions granted"}
		}
		return CommandResult{Reply: strings.Join(grants, "\n")}
	case "clear":
		o.gate.Clear()
		return CommandResult{Reply: "permission cache cleared"}
	default:
		return CommandResult{Reply: "usage: /perms list|clear"}
	}
}

func (o *Orchestrator) cmdLog(args string) CommandResult {
	sub, rest := splitWord(args)
	switch sub {
	case "on":
		path := o.logPath
		if path == "" {
			path = "chatcli.log"
		}
		if err := o.setLog(path); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		return CommandResult{Reply: "logging to " + path}
	case "off":
		o.closeLog()
		return CommandResult{Reply: "logging off"}
	case "set":
		if strings.TrimSpace(rest) == "" {
			return CommandResult{Reply: "usage: /log set <file>"}
		}
		if err := o.setLog(strings.TrimSpace(rest)); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		return CommandResult{Reply: "logging to " + o.logPath}
	default:
		return CommandResult{Reply: "usage: /log on|off|set <file>"}
	}
}

func (o *Orchestrator) cmdDebug(args string) CommandResult {
	switch strings.TrimSpace(args) {
	case "on":
		o.debug = true
		return CommandResult{Reply: "debug on"}
	case "off":
		o.debug = false
		return CommandResult{Reply: "debug off"}
	default:
		return CommandResult{Reply: "usage: /debug on|off"}
	}
}

func (o *Orchestrator) cmdModel(args string) CommandResult {
	sub, rest := splitWord(args)
	switch sub {
	case "":
		reply := "model: " + o.provider.CurrentModel()
		if o.temperature != nil {
			reply += fmt.Sprintf(", temp: %g", *o.temperature)
		}
		if o.maxTokens > 0 {
			reply += fmt.Sprintf(", maxtokens: %d", o.maxTokens)
		}
		return CommandResult{Reply: reply}
	case "set":
		if err := o.provider.SetModel(rest); err != nil {
			return CommandResult{Reply: err.Error()}
		}
		return CommandResult{Reply: "model set to " + rest}
	case "temp":
		v, err := strconv.ParseFloat(strings.TrimSpace(rest), 64)
		if err != nil {
			return CommandResult{Reply: "usage: /model temp <number>"}
		}
		o.temperature = &v
		return CommandResult{Reply: fmt.Sprintf("temperature set to %g", v)}
	case "maxtokens":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 0 {
			return CommandResult{Reply: "usage: /model maxtokens <n>"}
		}
		o.maxTokens = n
		return CommandResult{Reply: fmt.Sprintf("max tokens set to %d", n)}
	case "systemmsg":
		if strings.TrimSpace(rest) == "" {
			return CommandResult{Reply: "usage: /model systemmsg <text>"}
		}
		o.SetSystemMessage(rest)
		o.persist()
		return CommandResult{Reply: "system message set"}
	case "systemclear":
		o.clearSystemMessage()
		o.persist()
		return CommandResult{Reply: "system message cleared"}
	default:
		return CommandResult{Reply: "usage: /model [set <id>|temp <n>|maxtokens <n>|systemmsg <text>|systemclear]"}
	}
}

// cmdRetry drops everything after (and including) the last assistant answer
// so the exchange re-runs from the last user message.
func (o *Orchestrator) cmdRetry() CommandResult {
	idx := o.lastUserIndex()
	if idx < 0 {
		return CommandResult{Reply: "nothing to retry"}
	}
	o.messages = o.messages[:idx+1]
	o.persist()
	return CommandResult{Rerun: true}
}

func (o *Orchestrator) cmdEdit(args string) CommandResult {
	idx := o.lastUserIndex()
	if idx < 0 {
		return CommandResult{Reply: "no user message to edit"}
	}
	if strings.TrimSpace(args) == "" {
		return CommandResult{Reply: "last user message: " + summarizeForLog(o.messages[idx].Content) + "\nusage: /edit <replacement text>"}
	}
	o.messages = o.messages[:idx+1]
	o.messages[idx].Content = args
	o.persist()
	return CommandResult{Rerun: true}
}

func (o *Orchestrator) cmdReset() CommandResult {
	sys, hasSys := o.systemMessage()
	o.messages = nil
	if hasSys {
		o.messages = []chat.Message{sys}
	}
	o.gate.Clear()
	o.debug = false
	o.closeLog()
	o.persist()
	return CommandResult{Reply: "conversation reset"}
}

func (o *Orchestrator) cmdDiff(args string) CommandResult {
	if o.store == nil {
		return CommandResult{Reply: "no session store configured"}
	}
	cfg := o.store.DiffPreview()
	sub, rest := splitWord(args)
	switch sub {
	case "":
		state := "off"
		if cfg.Enabled {
			state = "on"
		}
		return CommandResult{Reply: fmt.Sprintf("diff preview: %s, threshold: %d, maxlines: %d", state, cfg.ThresholdLines, cfg.MaxLines)}
	case "on":
		cfg.Enabled = true
	case "off":
		cfg.Enabled = false
	case "threshold":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil || n < 0 {
			return CommandResult{Reply: "usage: /diff threshold <non-negative n>"}
		}
		cfg.ThresholdLines = n
	case "maxlines":
		n, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return CommandResult{Reply: "usage: /diff maxlines <n>"}
		}
		cfg.MaxLines = n
	default:
		return CommandResult{Reply: "usage: /diff [on|off|threshold <n>|maxlines <n>]"}
	}
	cfg.Normalize()
	o.saveAfterMutation()
	return CommandResult{Reply: "diff preview updated"}
}

func (o *Orchestrator) lastUserIndex() int {
	for i := len(o.messages) - 1; i >= 0; i-- {
		if o.messages[i].Role == chat.RoleUser {
			return i
		}
	}
	return -1
}

func (o *Orchestrator) saveAfterMutation() {
	if o.store == nil {
		return
	}
	if err := o.store.Save(); err != nil {
		// Best-effort persistence; the REPL keeps going.
		fmt.Fprintf(os.Stderr, "warning: save session: %v\n", err)
	}
}

func splitWord(s string) (first, rest string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	parts := strings.SplitN(s, " ", 2)
	first = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		rest = strings.TrimSpace(parts[1])
	}
	return first, rest
}

func splitTitleDesc(s string) (title, desc string) {
	parts := strings.SplitN(s, "|", 2)
	title = strings.TrimSpace(parts[0])
	if len(parts) > 1 {
		desc = strings.TrimSpace(parts[1])
	}
	return title, desc
}
