package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"chatcli/internal/chat"
	"chatcli/internal/diffview"
	"chatcli/internal/security"
)

// WriteFileTool creates or fully overwrites a file. Writes are gated by the
// write permission cache; overwrites of existing files additionally pass
// through the diff preview.
type WriteFileTool struct {
	ws      *security.Workspace
	gate    gateChecker
	preview *diffview.Previewer
}

func NewWriteFileTool(ws *security.Workspace, gate gateChecker, preview *diffview.Previewer) *WriteFileTool {
	return &WriteFileTool{ws: ws, gate: gate, preview: preview}
}

func (t *WriteFileTool) Name() string {
	return "write_file"
}

func (t *WriteFileTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Create or overwrite a file with the given content. Missing parent directories are created.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":    map[string]any{"type": "string"},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"path", "content"},
			},
		},
	}
}

func (t *WriteFileTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("write_file args: %w", err)
	}
	resolved, err := t.ws.Resolve(in.Path)
	if err != nil {
		return errorResult(KindIOFailure, "resolve path: %v", err), nil
	}
	if !t.gate.Check(ctx, writeKind, resolved) {
		return errorResult(KindPermissionDenied, "write access to %s was not granted", in.Path), nil
	}

	before, existed, err := readExisting(resolved)
	if err != nil {
		return errorResult(KindIOFailure, "read existing file: %v", err), nil
	}
	changed := 0
	if existed {
		decision := t.preview.Decide(ctx, in.Path, before, in.Content)
		changed = decision.ChangedLines
		if !decision.Proceed {
			return errorResult(KindPermissionDenied, "change to %s was rejected at diff review", in.Path), nil
		}
	}

	if dir := filepath.Dir(resolved); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errorResult(KindIOFailure, "create parent dirs: %v", err), nil
		}
	}
	if err := os.WriteFile(resolved, []byte(in.Content), 0o644); err != nil {
		return errorResult(KindIOFailure, "write file: %v", err), nil
	}

	return mustJSON(map[string]any{
		"ok":            true,
		"path":          in.Path,
		"bytes_written": len(in.Content),
		"created":       !existed,
		"changed_lines": changed,
	}), nil
}

// readExisting loads a file that may not exist yet; absence is not an error.
func readExisting(path string) (content string, existed bool, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(data), true, nil
}
