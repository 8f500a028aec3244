package security

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestWorkspaceResolveInside(t *testing.T) {
	root := t.TempDir()
	ws, err := NewWorkspace(root)
	if err != nil {
		t.Fatal(err)
	}
	got, err := ws.Resolve("sub/file.txt")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(ws.Root(), "sub", "file.txt")
	if got != want {
		t.Fatalf("resolved %q, want %q", got, want)
	}
}

func TestWorkspaceResolveEscapeRejected(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Resolve("../outside.txt"); !errors.Is(err, ErrPathOutsideWorkspace) {
		t.Fatalf("expected ErrPathOutsideWorkspace, got %v", err)
	}
	if _, err := ws.Resolve("/etc/passwd"); !errors.Is(err, ErrPathOutsideWorkspace) {
		t.Fatalf("expected ErrPathOutsideWorkspace for absolute escape, got %v", err)
	}
}

func TestWorkspaceResolveEmptyIsRoot(t *testing.T) {
	ws, err := NewWorkspace(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	got, err := ws.Resolve("")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != ws.Root() {
		t.Fatalf("resolved %q, want root %q", got, ws.Root())
	}
}
