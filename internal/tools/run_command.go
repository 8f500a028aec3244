package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"chatcli/internal/chat"
	"chatcli/internal/permission"
)

const (
	minCommandTimeoutMS = 100
	maxCommandTimeoutMS = 600000
)

// RunCommandTool executes a shell command in the workspace root. Every
// invocation prompts for consent; command approvals are never cached.
type RunCommandTool struct {
	gate             *permission.Gate
	workspaceRoot    string
	defaultTimeoutMS int
	outputLimitBytes int
}

func NewRunCommandTool(gate *permission.Gate, workspaceRoot string, defaultTimeoutMS, outputLimitBytes int) *RunCommandTool {
	if defaultTimeoutMS <= 0 {
		defaultTimeoutMS = 120000
	}
	return &RunCommandTool{
		gate:             gate,
		workspaceRoot:    workspaceRoot,
		defaultTimeoutMS: defaultTimeoutMS,
		outputLimitBytes: outputLimitBytes,
	}
}

func (t *RunCommandTool) Name() string {
	return "run_command"
}

func (t *RunCommandTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Run a shell command in the working directory and capture stdout, stderr and the exit code.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"command": map[string]any{"type": "string"},
					"timeout_ms": map[string]any{
						"type":        "integer",
						"description": "Optional timeout in milliseconds, clamped to 100-600000.",
					},
				},
				"required": []string{"command"},
			},
		},
	}
}

func (t *RunCommandTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Command   string `json:"command"`
		TimeoutMS int    `json:"timeout_ms"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("run_command args: %w", err)
	}
	if strings.TrimSpace(in.Command) == "" {
		return "", errors.New("run_command: command is empty")
	}

	if !t.gate.ConfirmCommand(ctx, in.Command) {
		return errorResult(KindPermissionDenied, "command not approved: %s", in.Command), nil
	}

	timeoutMS := in.TimeoutMS
	if timeoutMS <= 0 {
		timeoutMS = t.defaultTimeoutMS
	}
	if timeoutMS < minCommandTimeoutMS {
		timeoutMS = minCommandTimeoutMS
	}
	if timeoutMS > maxCommandTimeoutMS {
		timeoutMS = maxCommandTimeoutMS
	}

	execCtx, cancel := context.WithTimeout(ctx, time.Duration(timeoutMS)*time.Millisecond)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "/bin/sh", "-c", in.Command)
	cmd.Dir = t.workspaceRoot
	// Stdin stays closed so a child waiting for input fails fast instead of
	// hanging the loop.
	cmd.Stdin = nil

	stdout := newCappedBuffer(t.outputLimitBytes)
	stderr := newCappedBuffer(t.outputLimitBytes)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	start := time.Now()
	err := cmd.Run()
	dur := time.Since(start)

	if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
		return mustJSON(map[string]any{
			"ok":          false,
			"kind":        KindTimeout,
			"error":       fmt.Sprintf("command killed after %dms", timeoutMS),
			"command":     in.Command,
			"stdout":      stdout.String(),
			"stderr":      stderr.String(),
			"duration_ms": dur.Milliseconds(),
		}), nil
	}

	exitCode := 0
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			exitCode = ee.ExitCode()
		} else {
			return errorResult(KindIOFailure, "run command: %v", err), nil
		}
	}

	return mustJSON(map[string]any{
		"ok":          exitCode == 0,
		"command":     in.Command,
		"exit_code":   exitCode,
		"stdout":      stdout.String(),
		"stderr":      stderr.String(),
		"truncated":   stdout.truncated || stderr.truncated,
		"duration_ms": dur.Milliseconds(),
	}), nil
}

type cappedBuffer struct {
	max       int
	buf       bytes.Buffer
	truncated bool
}

func newCappedBuffer(max int) *cappedBuffer {
	if max <= 0 {
		max = 1 << 20
	}
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.truncated {
		return len(p), nil
	}
	remain := b.max - b.buf.Len()
	if remain <= 0 {
		b.truncated = true
		return len(p), nil
	}
	if len(p) > remain {
		_, _ = b.buf.Write(p[:remain])
		b.truncated = true
		return len(p), nil
	}
	_, err := b.buf.Write(p)
	return len(p), err
}

func (b *cappedBuffer) String() string {
	if !b.truncated {
		return b.buf.String()
	}
	var out bytes.Buffer
	_, _ = io.Copy(&out, bytes.NewReader(b.buf.Bytes()))
	out.WriteString("\n[output truncated]")
	return out.String()
}
