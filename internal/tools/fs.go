package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"chatcli/internal/chat"
	"chatcli/internal/security"
)

// SearchFilesTool matches relative paths under the workspace against a
// case-insensitive substring, depth-first, stopping once the cap is hit.
type SearchFilesTool struct {
	ws *security.Workspace
}

func NewSearchFilesTool(ws *security.Workspace) *SearchFilesTool {
	return &SearchFilesTool{ws: ws}
}

func (t *SearchFilesTool) Name() string {
	return "search_files"
}

func (t *SearchFilesTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Search for files whose relative path contains a substring (case-insensitive), recursively under the working directory.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{"type": "string"},
					"max_results": map[string]any{
						"type":        "integer",
						"description": "Result cap, 1-500. Defaults to 100.",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}

func (t *SearchFilesTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Query      string `json:"query"`
		MaxResults int    `json:"max_results"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("search_files args: %w", err)
	}
	if in.MaxResults <= 0 {
		in.MaxResults = 100
	}
	if in.MaxResults > 500 {
		in.MaxResults = 500
	}
	needle := strings.ToLower(in.Query)

	var matches []string
	err := filepath.WalkDir(t.ws.Root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if path == t.ws.Root() {
			return nil
		}
		rel := t.ws.Rel(path)
		if strings.Contains(strings.ToLower(filepath.ToSlash(rel)), needle) {
			matches = append(matches, filepath.ToSlash(rel))
			if len(matches) >= in.MaxResults {
				return fs.SkipAll
			}
		}
		return nil
	})
	if err != nil {
		return errorResult(KindIOFailure, "walk workspace: %v", err), nil
	}

	return mustJSON(map[string]any{
		"ok":      true,
		"query":   in.Query,
		"matches": matches,
		"count":   len(matches),
		"capped":  len(matches) >= in.MaxResults,
	}), nil
}

// PathExistsTool reports existence and kind; a missing path is a normal
// result, never a failure.
type PathExistsTool struct {
	ws *security.Workspace
}

func NewPathExistsTool(ws *security.Workspace) *PathExistsTool {
	return &PathExistsTool{ws: ws}
}

func (t *PathExistsTool) Name() string {
	return "path_exists"
}

func (t *PathExistsTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Check whether a path exists and whether it is a file or a directory.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
				},
				"required": []string{"path"},
			},
		},
	}
}

func (t *PathExistsTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("path_exists args: %w", err)
	}
	resolved, err := t.ws.Resolve(in.Path)
	if err != nil {
		return errorResult(KindIOFailure, "resolve path: %v", err), nil
	}
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return mustJSON(map[string]any{"ok": true, "path": in.Path, "exists": false}), nil
		}
		return errorResult(KindIOFailure, "stat: %v", err), nil
	}
	return mustJSON(map[string]any{
		"ok":           true,
		"path":         in.Path,
		"exists":       true,
		"is_directory": info.IsDir(),
	}), nil
}

// ReadDirTool lists the immediate entries of a directory.
type ReadDirTool struct {
	ws *security.Workspace
}

func NewReadDirTool(ws *security.Workspace) *ReadDirTool {
	return &ReadDirTool{ws: ws}
}

func (t *ReadDirTool) Name() string {
	return "read_dir"
}

func (t *ReadDirTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "List the immediate entries of a directory with a file/dir annotation.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
				},
			},
		},
	}
}

func (t *ReadDirTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path string `json:"path"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &in); err != nil {
			return "", fmt.Errorf("read_dir args: %w", err)
		}
	}
	resolved, err := t.ws.Resolve(in.Path)
	if err != nil {
		return errorResult(KindIOFailure, "resolve path: %v", err), nil
	}
	entries, err := os.ReadDir(resolved)
	if err != nil {
		return errorResult(KindIOFailure, "read dir: %v", err), nil
	}
	type entry struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		kind := "file"
		switch {
		case e.IsDir():
			kind = "dir"
		case !e.Type().IsRegular():
			kind = "other"
		}
		out = append(out, entry{Name: e.Name(), Type: kind})
	}
	return mustJSON(map[string]any{
		"ok":      true,
		"path":    in.Path,
		"entries": out,
		"count":   len(out),
	}), nil
}

const (
	maxReadBytes     = 200000
	defaultReadBytes = 200000
)

// ReadFileTool reads file content from offset 0 up to max_bytes; access is
// gated by the read permission cache.
type ReadFileTool struct {
	ws   *security.Workspace
	gate gateChecker
}

func NewReadFileTool(ws *security.Workspace, gate gateChecker) *ReadFileTool {
	return &ReadFileTool{ws: ws, gate: gate}
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Read a file's content from the beginning, up to max_bytes.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"path": map[string]any{"type": "string"},
					"max_bytes": map[string]any{
						"type":        "integer",
						"description": "Byte cap, 1-200000. Defaults to 200000.",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}

func (t *ReadFileTool) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Path     string `json:"path"`
		MaxBytes int    `json:"max_bytes"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("read_file args: %w", err)
	}
	if in.MaxBytes <= 0 {
		in.MaxBytes = defaultReadBytes
	}
	if in.MaxBytes > maxReadBytes {
		in.MaxBytes = maxReadBytes
	}
	resolved, err := t.ws.Resolve(in.Path)
	if err != nil {
		return errorResult(KindIOFailure, "resolve path: %v", err), nil
	}
	if !t.gate.Check(ctx, readKind, resolved) {
		return errorResult(KindPermissionDenied, "read access to %s was not granted", in.Path), nil
	}

	f, err := os.Open(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return errorResult(KindFileNotFound, "no such file: %s", in.Path), nil
		}
		return errorResult(KindIOFailure, "open file: %v", err), nil
	}
	defer f.Close()

	buf := make([]byte, in.MaxBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errorResult(KindIOFailure, "read file: %v", err), nil
	}
	truncated := false
	if n == in.MaxBytes {
		var probe [1]byte
		if m, _ := f.Read(probe[:]); m > 0 {
			truncated = true
		}
	}

	return mustJSON(map[string]any{
		"ok":        true,
		"path":      in.Path,
		"content":   string(buf[:n]),
		"bytes":     n,
		"truncated": truncated,
	}), nil
}
