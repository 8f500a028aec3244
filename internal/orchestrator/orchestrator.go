package orchestrator

import (
	"fmt"
	"os"
	"strings"
	"time"

	"chatcli/internal/chat"
	"chatcli/internal/permission"
	"chatcli/internal/provider"
	"chatcli/internal/session"
	"chatcli/internal/tools"
)

const defaultMaxRounds = 20

// Orchestrator owns the conversation and drives the request/response/tool
// cycle. All mutation happens on the caller's goroutine; nothing here is
// touched concurrently.
type Orchestrator struct {
	provider provider.Provider
	registry *tools.Registry
	store    *session.Store
	gate     *permission.Gate

	messages  []chat.Message
	maxRounds int

	temperature *float64
	maxTokens   int
	stream      bool
	debug       bool

	logPath string
	logFile *os.File
}

type Options struct {
	Store        *session.Store
	Gate         *permission.Gate
	SystemPrompt string
	MaxRounds    int
	Temperature  *float64
	MaxTokens    int
	Stream       bool
}

func New(providerClient provider.Provider, registry *tools.Registry, opts Options) *Orchestrator {
	maxRounds := opts.MaxRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	o := &Orchestrator{
		provider:    providerClient,
		registry:    registry,
		store:       opts.Store,
		gate:        opts.Gate,
		maxRounds:   maxRounds,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		stream:      opts.Stream,
	}
	if opts.Store != nil {
		o.messages = opts.Store.Messages()
	}
	if strings.TrimSpace(opts.SystemPrompt) != "" {
		o.SetSystemMessage(opts.SystemPrompt)
	}
	return o
}

func (o *Orchestrator) Messages() []chat.Message {
	return append([]chat.Message(nil), o.messages...)
}

func (o *Orchestrator) Model() string {
	return o.provider.CurrentModel()
}

// SetSystemMessage inserts or replaces the single leading system message.
func (o *Orchestrator) SetSystemMessage(content string) {
	msg := chat.Message{Role: chat.RoleSystem, Content: content}
	if len(o.messages) > 0 && o.messages[0].Role == chat.RoleSystem {
		o.messages[0] = msg
		return
	}
	o.messages = append([]chat.Message{msg}, o.messages...)
}

func (o *Orchestrator) clearSystemMessage() {
	if len(o.messages) > 0 && o.messages[0].Role == chat.RoleSystem {
		o.messages = o.messages[1:]
	}
}

func (o *Orchestrator) systemMessage() (chat.Message, bool) {
	if len(o.messages) > 0 && o.messages[0].Role == chat.RoleSystem {
		return o.messages[0], true
	}
	return chat.Message{}, false
}

func (o *Orchestrator) appendMessage(msg chat.Message) {
	o.messages = append(o.messages, msg)
	o.logMessage(msg)
}

// persist writes the conversation through the session store. Failures are
// reported, never fatal.
func (o *Orchestrator) persist() {
	if o.store == nil {
		return
	}
	o.store.SetMessages(o.messages)
	if err := o.store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: save session: %v\n", err)
	}
}

func (o *Orchestrator) logMessage(msg chat.Message) {
	if o.logFile == nil {
		return
	}
	stamp := time.Now().UTC().Format(time.RFC3339)
	content := msg.Content
	if content == "" && len(msg.ToolCalls) > 0 {
		content = fmt.Sprintf("[tool call %s]", msg.ToolCalls[0].Function.Name)
	}
	fmt.Fprintf(o.logFile, "%s %s: %s\n", stamp, msg.Role, strings.ReplaceAll(content, "\n", "\\n"))
}

func (o *Orchestrator) setLog(path string) error {
	o.closeLog()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	o.logFile = f
	o.logPath = path
	return nil
}

func (o *Orchestrator) closeLog() {
	if o.logFile != nil {
		_ = o.logFile.Close()
		o.logFile = nil
	}
	o.logPath = ""
}

// Close releases the transcript log, if any.
func (o *Orchestrator) Close() {
	o.closeLog()
}
