package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatcli/internal/permission"
)

func TestPatchFileToolReplaceRange(t *testing.T) {
	ws, root := testWorkspace(t)
	target := filepath.Join(root, "code.txt")
	if err := os.WriteFile(target, []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewPatchFileTool(ws, gate, silentPreviewer())

	args := `{"path":"code.txt","operations":[{"kind":"replace_range","start_line":2,"end_line":2,"new_content":"TWO"}]}`
	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(args))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"ok":true`) {
		t.Fatalf("expected success, got: %s", out)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "one\nTWO\nthree\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestPatchFileToolMissingFile(t *testing.T) {
	ws, _ := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewPatchFileTool(ws, gate, silentPreviewer())

	args := `{"path":"absent.txt","operations":[{"kind":"append","new_content":"x"}]}`
	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(args))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, KindFileNotFound) {
		t.Fatalf("expected FileNotFound payload, got: %s", out)
	}
}

func TestPatchFileToolEmptyOperations(t *testing.T) {
	ws, _ := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewPatchFileTool(ws, gate, silentPreviewer())

	out, err := tool.Execute(promptCtx(&scriptedPrompter{}), json.RawMessage(`{"path":"a.txt","operations":[]}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, KindNoOperations) {
		t.Fatalf("expected NoOperations payload, got: %s", out)
	}
}

func TestPatchFileToolBadOperationLeavesFile(t *testing.T) {
	ws, root := testWorkspace(t)
	target := filepath.Join(root, "code.txt")
	before := "one\ntwo\n"
	if err := os.WriteFile(target, []byte(before), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewPatchFileTool(ws, gate, silentPreviewer())

	args := `{"path":"code.txt","operations":[{"kind":"replace_range","start_line":5,"end_line":2,"new_content":"x"}]}`
	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(args))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "InvalidRange") {
		t.Fatalf("expected InvalidRange payload, got: %s", out)
	}
	data, _ := os.ReadFile(target)
	if string(data) != before {
		t.Fatalf("file modified by failed batch: %q", data)
	}
}

func TestPatchFileToolSequentialOperations(t *testing.T) {
	ws, root := testWorkspace(t)
	target := filepath.Join(root, "seq.txt")
	if err := os.WriteFile(target, []byte("alpha\nbeta\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewPatchFileTool(ws, gate, silentPreviewer())

	args := `{"path":"seq.txt","operations":[` +
		`{"kind":"append","new_content":"gamma"},` +
		`{"kind":"replace_regex","pattern":"a$","flags":"m","new_content":"A"}]}`
	p := &scriptedPrompter{answers: []bool{true}}
	if _, err := tool.Execute(promptCtx(p), json.RawMessage(args)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	data, _ := os.ReadFile(target)
	if !strings.Contains(string(data), "gammA") {
		t.Fatalf("second operation did not see first's output: %q", data)
	}
}
