package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chatcli/internal/permission"
)

func TestSearchFilesTool(t *testing.T) {
	ws, root := testWorkspace(t)
	for _, name := range []string{"main.go", "util.go", "notes.txt", "pkg/helper.go"} {
		path := filepath.Join(root, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tool := NewSearchFilesTool(ws)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":".GO"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	for _, want := range []string{"main.go", "util.go", "pkg/helper.go"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in results: %s", want, out)
		}
	}
	if strings.Contains(out, "notes.txt") {
		t.Fatalf("unexpected match: %s", out)
	}
}

func TestSearchFilesToolCap(t *testing.T) {
	ws, root := testWorkspace(t)
	for i := 0; i < 5; i++ {
		name := filepath.Join(root, "file"+string(rune('a'+i))+".txt")
		if err := os.WriteFile(name, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	tool := NewSearchFilesTool(ws)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"file","max_results":2}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"count":2`) {
		t.Fatalf("expected 2 results, got: %s", out)
	}
}

func TestPathExistsTool(t *testing.T) {
	ws, root := testWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "here.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewPathExistsTool(ws)

	out, err := tool.Execute(context.Background(), json.RawMessage(`{"path":"here.txt"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"exists":true`) {
		t.Fatalf("expected exists true: %s", out)
	}

	out, err = tool.Execute(context.Background(), json.RawMessage(`{"path":"gone.txt"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"exists":false`) || !strings.Contains(out, `"ok":true`) {
		t.Fatalf("missing path should be a successful exists:false result: %s", out)
	}
}

func TestReadFileToolTruncation(t *testing.T) {
	ws, root := testWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "long.txt"), []byte("abcdefghij"), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewReadFileTool(ws, gate)

	p := &scriptedPrompter{answers: []bool{true}}
	out, err := tool.Execute(promptCtx(p), json.RawMessage(`{"path":"long.txt","max_bytes":4}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"content":"abcd"`) || !strings.Contains(out, `"truncated":true`) {
		t.Fatalf("unexpected result: %s", out)
	}
}

func TestReadFileToolCachedGrant(t *testing.T) {
	ws, root := testWorkspace(t)
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	gate := permission.NewGate()
	tool := NewReadFileTool(ws, gate)

	p := &scriptedPrompter{answers: []bool{true}}
	ctx := promptCtx(p)
	if _, err := tool.Execute(ctx, json.RawMessage(`{"path":"a.txt"}`)); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if _, err := tool.Execute(ctx, json.RawMessage(`{"path":"a.txt"}`)); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if len(p.questions) != 1 {
		t.Fatalf("expected one prompt for a cached grant, got %d", len(p.questions))
	}
}

func TestReadFileToolEscapeRejected(t *testing.T) {
	ws, _ := testWorkspace(t)
	gate := permission.NewGate()
	tool := NewReadFileTool(ws, gate)

	out, err := tool.Execute(promptCtx(&scriptedPrompter{answers: []bool{true}}), json.RawMessage(`{"path":"../outside.txt"}`))
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.Contains(out, `"ok":false`) {
		t.Fatalf("expected failure payload for escape: %s", out)
	}
}
