package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"chatcli/internal/chat"
	"chatcli/internal/diffview"
	"chatcli/internal/patch"
	"chatcli/internal/security"
)

// PatchFileTool applies an ordered batch of structured edits to an existing
// file. The batch is all-or-nothing: the first failing operation, or a
// rejection at diff review, leaves the file untouched.
type PatchFileTool struct {
	ws      *security.Workspace
	gate    gateChecker
	preview *diffview.Previewer
}

func NewPatchFileTool(ws *security.Workspace, gate gateChecker, preview *diffview.Previewer) *PatchFileTool {
	return &PatchFileTool{ws: ws, gate: gate, preview: preview}
}

func (t *PatchFileTool) Name() string {
	return "patch_file"
}

func (t *PatchFileTool) Definition() chat.ToolDef {
	opSchema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"kind": map[string]any{
				"type": "string",
				"enum": []string{"replace_range", "insert_at", "replace_regex", "append", "prepend"},
			},
			"start_line":  map[string]any{"type": "integer", "description": "1-based, replace_range only."},
			"end_line":    map[string]any{"type": "integer", "description": "1-based inclusive, replace_range only."},
			"line":        map[string]any{"type": "integer", "description": "1-based anchor, insert_at only."},
			"position":    map[string]any{"type": "string", "enum": []string{"before", "after"}},
			"pattern":     map[string]any{"type": "string", "description": "Go regular expression, replace_regex only."},
			"flags":       map[string]any{"type": "string", "description": "Any of i, m, s, U. Replacement is always global."},
			"new_content": map[string]any{"type": "string"},
		},
		"required": []string{"kind", "new_content"},
	}
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Apply a sequence of edit operations to an existing file. Operations run in order, each against the result of the previous one.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path":       map[string]any{"type": "string"},
					"operations": map[string]any{"type": "array", "items": opSchema},
				},
				"required": []string{"path", "operations"},
			},
		},
	}
}

func (t *PatchFileTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path       string            `json:"path"`
		Operations []patch.Operation `json:"operations"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("patch_file args: %w", err)
	}
	if len(in.Operations) == 0 {
		return errorResult(KindNoOperations, "operations must not be empty"), nil
	}
	resolved, err := t.ws.Resolve(in.Path)
	if err != nil {
		return errorResult(KindIOFailure, "resolve path: %v", err), nil
	}
	if !t.gate.Check(ctx, writeKind, resolved) {
		return errorResult(KindPermissionDenied, "write access to %s was not granted", in.Path), nil
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(KindFileNotFound, "no such file: %s", in.Path), nil
		}
		return errorResult(KindIOFailure, "read file: %v", err), nil
	}
	before := string(data)

	after, err := patch.Apply(before, in.Operations)
	if err != nil {
		var pe *patch.Error
		if errors.As(err, &pe) {
			return errorResult(string(pe.Kind), "%s", pe.Message), nil
		}
		return errorResult(string(patch.KindUnsupportedOperation), "%v", err), nil
	}

	decision := t.preview.Decide(ctx, in.Path, before, after)
	if !decision.Proceed {
		return errorResult(KindPermissionDenied, "change to %s was rejected at diff review", in.Path), nil
	}
	if err := os.WriteFile(resolved, []byte(after), 0o644); err != nil {
		return errorResult(KindIOFailure, "write file: %v", err), nil
	}

	return mustJSON(map[string]any{
		"ok":            true,
		"path":          in.Path,
		"operations":    len(in.Operations),
		"changed_lines": decision.ChangedLines,
	}), nil
}
