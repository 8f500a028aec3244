package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"

	"chatcli/internal/orchestrator"
	"chatcli/internal/permission"
)

const (
	ansiReset = "\x1b[0m"
	ansiDim   = "\x1b[90m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

// Loop drives the interactive session: line input between turns, raw-mode
// cancellation while a turn is in flight.
type Loop struct {
	orch          *orchestrator.Orchestrator
	workspaceRoot string
	historyFile   string
}

func NewLoop(orch *orchestrator.Orchestrator, workspaceRoot, historyFile string) *Loop {
	return &Loop{orch: orch, workspaceRoot: workspaceRoot, historyFile: historyFile}
}

// Run reads input until /exit, EOF, or Ctrl+C at an empty prompt.
func (l *Loop) Run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          l.promptLine(),
		HistoryFile:     l.historyFile,
		InterruptPrompt: "^C",
		EOFPrompt:       "/exit",
	})
	if err != nil {
		return fmt.Errorf("init readline: %w", err)
	}
	defer rl.Close()

	stdout := os.Stdout
	for {
		l.printContextLine(stdout)
		rl.SetPrompt(l.promptLine())

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if strings.TrimSpace(line) == "" {
				return nil
			}
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		if cmd, args, ok := orchestrator.ParseSlash(text); ok {
			res := l.orch.HandleCommand(cmd, args)
			if res.Reply != "" {
				fmt.Fprintln(stdout, res.Reply)
			}
			if res.Exit {
				return nil
			}
			if res.Rerun {
				if exit := l.runCancellable(stdout, func(ctx context.Context, out io.Writer) error {
					_, err := l.orch.Rerun(ctx, out)
					return err
				}); exit {
					return nil
				}
			}
			continue
		}

		if exit := l.runCancellable(stdout, func(ctx context.Context, out io.Writer) error {
			_, err := l.orch.RunTurn(ctx, text, out)
			return err
		}); exit {
			return nil
		}
	}
}

// runCancellable wraps one agentic exchange with the raw-mode keypress
// listener. Returns true when the user interrupted hard (Ctrl+C), which
// ends the REPL.
func (l *Loop) runCancellable(stdout *os.File, run func(ctx context.Context, out io.Writer) error) bool {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := io.Writer(stdout)
	var ctrl *runtimeController
	if isTTY(os.Stdin) {
		out = newTerminalOutputWriter(stdout)
		var err error
		ctrl, err = newRuntimeController(int(os.Stdin.Fd()), out, cancel)
		if err != nil {
			fmt.Fprintf(stdout, "%serror: %v%s\n", color(ansiRed), err, color(ansiReset))
			return false
		}
		ctx = permission.WithPrompter(ctx, ctrl)
	}

	err := run(ctx, out)
	cancel()
	if ctrl != nil {
		if closeErr := ctrl.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
		if ctrl.Interrupted() {
			fmt.Fprintln(stdout)
			return true
		}
		if ctrl.CancelledByEsc() {
			fmt.Fprintf(stdout, "\n%scancelled%s\n", color(ansiDim), color(ansiReset))
			return false
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintf(stdout, "\n%scancelled%s\n", color(ansiDim), color(ansiReset))
			return false
		}
		fmt.Fprintf(stdout, "\n%serror: %v%s\n", color(ansiRed), err, color(ansiReset))
	}
	return false
}

func (l *Loop) printContextLine(w io.Writer) {
	line := fmt.Sprintf("context: %d tokens · model: %s", l.orch.ContextTokens(), l.orch.Model())
	fmt.Fprintf(w, "%s%s%s\n", color(ansiDim), line, color(ansiReset))
}

func (l *Loop) promptLine() string {
	return fmt.Sprintf("%s%s> %s", color(ansiGreen), l.workspaceRoot, color(ansiReset))
}

func color(code string) string {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return ""
	}
	if strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) == "dumb" {
		return ""
	}
	return code
}
