package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chatcli/internal/chat"
	"chatcli/internal/session"
)

// ManageTodoTool lets the model keep a plan in the session's todo list.
type ManageTodoTool struct {
	store *session.Store
}

func NewManageTodoTool(store *session.Store) *ManageTodoTool {
	return &ManageTodoTool{store: store}
}

func (t *ManageTodoTool) Name() string {
	return "manage_todo"
}

func (t *ManageTodoTool) Definition() chat.ToolDef {
	return chat.ToolDef{
		Type: "function",
		Function: chat.ToolFunction{
			Name:        t.Name(),
			Description: "Manage the session todo list: create, list, update, complete, or delete items.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type": "string",
						"enum": []string{"create", "list", "update", "complete", "delete"},
					},
					"id":          map[string]any{"type": "integer", "description": "Item id, required for update, complete and delete."},
					"title":       map[string]any{"type": "string"},
					"description": map[string]any{"type": "string"},
				},
				"required": []string{"action"},
			},
		},
	}
}

func (t *ManageTodoTool) Execute(_ context.Context, args json.RawMessage) (string, error) {
	var in struct {
		Action      string `json:"action"`
		ID          int    `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(args, &in); err != nil {
		return "", fmt.Errorf("manage_todo args: %w", err)
	}

	switch in.Action {
	case "create":
		if strings.TrimSpace(in.Title) == "" {
			return "", fmt.Errorf("manage_todo create: title must not be empty")
		}
		item := t.store.AddTodo(in.Title, in.Description)
		return mustJSON(map[string]any{"ok": true, "item": item}), nil
	case "list":
		items := t.store.Todos()
		return mustJSON(map[string]any{"ok": true, "items": items, "count": len(items)}), nil
	case "update":
		item, err := t.store.UpdateTodo(in.ID, in.Title, in.Description)
		if err != nil {
			return todoError(in.ID, err), nil
		}
		return mustJSON(map[string]any{"ok": true, "item": item}), nil
	case "complete":
		item, err := t.store.CompleteTodo(in.ID)
		if err != nil {
			return todoError(in.ID, err), nil
		}
		return mustJSON(map[string]any{"ok": true, "item": item}), nil
	case "delete":
		if err := t.store.DeleteTodo(in.ID); err != nil {
			return todoError(in.ID, err), nil
		}
		return mustJSON(map[string]any{"ok": true, "deleted": in.ID}), nil
	default:
		return "", fmt.Errorf("manage_todo: unknown action %q", in.Action)
	}
}

func todoError(id int, err error) string {
	if errors.Is(err, session.ErrTodoNotFound) {
		return errorResult(KindNotFound, "no todo item with id %d", id)
	}
	return errorResult(KindIOFailure, "todo: %v", err)
}
