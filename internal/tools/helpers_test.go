package tools

import (
	"context"
	"testing"

	"chatcli/internal/diffview"
	"chatcli/internal/permission"
	"chatcli/internal/security"
)

// scriptedPrompter answers confirmations from a fixed script and records
// every question it was asked.
type scriptedPrompter struct {
	answers   []bool
	questions []string
	notes     []string
}

func (p *scriptedPrompter) Confirm(_ context.Context, question string) (bool, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return false, nil
	}
	ans := p.answers[0]
	p.answers = p.answers[1:]
	return ans, nil
}

func (p *scriptedPrompter) Notify(message string) {
	p.notes = append(p.notes, message)
}

func promptCtx(p permission.Prompter) context.Context {
	return permission.WithPrompter(context.Background(), p)
}

func testWorkspace(t *testing.T) (*security.Workspace, string) {
	t.Helper()
	root := t.TempDir()
	ws, err := security.NewWorkspace(root)
	if err != nil {
		t.Fatalf("NewWorkspace failed: %v", err)
	}
	return ws, root
}

func silentPreviewer() *diffview.Previewer {
	cfg := diffview.DefaultConfig()
	cfg.Enabled = false
	return diffview.NewPreviewer(&cfg)
}
