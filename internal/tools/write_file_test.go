package tools

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatcli/internal/diffview"
	"chatcli/internal/permission"
)

func TestWriteFileToolCreates(t *testing.T) {
	ws, root := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewWriteFileTool(ws, gate, silentPreviewer())

	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"path":"sub/new.txt","content":"hello\n"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"created":true`) {
		t.Fatalf("expected created flag, got: %s", out)
	}
	data, err := os.ReadFile(filepath.Join(root, "sub", "new.txt"))
	if err != nil {
		t.Fatalf("file not written: %v", err)
	}
	if string(data) != "hello\n" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteFileToolDeniedLeavesFileUntouched(t *testing.T) {
	ws, root := testWorkspace(t)
	target := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(target, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewWriteFileTool(ws, gate, silentPreviewer())

	p := &scriptedPrompter{answers: []bool{false}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"path":"keep.txt","content":"clobbered"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, KindPermissionDenied) {
		t.Fatalf("expected PermissionDenied payload, got: %s", out)
	}
	data, _ := os.ReadFile(target)
	if string(data) != "original" {
		t.Fatalf("file was modified after denial: %q", data)
	}
}

func TestWriteFileToolDiffRejectionAborts(t *testing.T) {
	ws, root := testWorkspace(t)
	target := filepath.Join(root, "big.txt")
	before := "a\nb\nc\nd\ne\n"
	if err := os.WriteFile(target, []byte(before), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := diffview.DefaultConfig()
	cfg.ThresholdLines = 1
	gate := permission.NewGate()
	tool := NewWriteFileTool(ws, gate, diffview.NewPreviewer(&cfg))

	// First answer grants write access, second rejects the diff.
	p := &scriptedPrompter{answers: []bool{true, false}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"path":"big.txt","content":"x\ny\nz\n"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, "rejected at diff review") {
		t.Fatalf("expected diff rejection payload, got: %s", out)
	}
	data, _ := os.ReadFile(target)
	if string(data) != before {
		t.Fatalf("file was modified after rejection: %q", data)
	}
}

func TestWriteFileToolNewFileSkipsDiff(t *testing.T) {
	ws, _ := testWorkspace(t)
	cfg := diffview.DefaultConfig()
	cfg.ThresholdLines = 0
	gate := permission.NewGate()
	tool := NewWriteFileTool(ws, gate, diffview.NewPreviewer(&cfg))

	p := &scriptedPrompter{answers: []bool{true}}
	if _, err := tool.Execute(promptCtx(p), json.RawMessage(`{"path":"fresh.txt","content":"a\nb\nc\n"}`)); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	// Only the write permission prompt should have fired.
	if len(p.questions) != 1 {
		t.Fatalf("expected 1 prompt for a new file, got %d: %v", len(p.questions), p.questions)
	}
}
