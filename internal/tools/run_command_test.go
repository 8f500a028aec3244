package tools

import (
	"encoding/json"
	"strings"
	"testing"

	"chatcli/internal/permission"
)

func TestRunCommandToolExecute(t *testing.T) {
	_, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewRunCommandTool(gate, root, 5000, 4096)

	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"command":"echo hi"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"exit_code":0`) {
		t.Fatalf("expected exit_code 0, got: %s", out)
	}
	if !strings.Contains(out, "hi") {
		t.Fatalf("expected command output, got: %s", out)
	}
}

func TestRunCommandToolAlwaysPrompts(t *testing.T) {
	_, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewRunCommandTool(gate, root, 5000, 4096)

	p := &scriptedPrompter{answers: []bool{true, true}}
	ctx := promptCtx(p)
	if _, err := tool.Execute(ctx, json.RawMessage(`{"command":"true"}`)); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if _, err := tool.Execute(ctx, json.RawMessage(`{"command":"true"}`)); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if len(p.questions) != 2 {
		t.Fatalf("expected a prompt per invocation, got %d", len(p.questions))
	}
}

func TestRunCommandToolDenied(t *testing.T) {
	_, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewRunCommandTool(gate, root, 5000, 4096)

	p := &scriptedPrompter{answers: []bool{false}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"command":"echo nope"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, KindPermissionDenied) {
		t.Fatalf("expected PermissionDenied payload, got: %s", out)
	}
}

func TestRunCommandToolNonZeroExit(t *testing.T) {
	_, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewRunCommandTool(gate, root, 5000, 4096)

	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"command":"exit 3"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"exit_code":3`) {
		t.Fatalf("expected exit_code 3, got: %s", out)
	}
}

func TestRunCommandToolTimeout(t *testing.T) {
	_, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewRunCommandTool(gate, root, 5000, 4096)

	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"command":"sleep 2","timeout_ms":100}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, KindTimeout) {
		t.Fatalf("expected Timeout payload, got: %s", out)
	}
}
