// Package session persists the conversation, todo list, and diff-preview
// config as a single JSON file, and owns the in-memory todo list.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"chatcli/internal/chat"
	"chatcli/internal/diffview"
)

// Session is the persisted unit.
type Session struct {
	Messages    []chat.Message  `json:"messages"`
	Todos       []TodoItem      `json:"todos"`
	DiffPreview diffview.Config `json:"diff_preview"`
}

// Store loads and saves the session file. Saving is best-effort: callers
// report failures but never abort the conversation over them.
type Store struct {
	mu      sync.Mutex
	path    string
	session Session
}

// Open reads the session file at path, if any. A top-level JSON array is the
// legacy format holding only the conversation; it is migrated with an empty
// todo list and default diff-preview config. Malformed content yields a
// fresh session and a non-nil warning, never a failure.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		session: Session{DiffPreview: diffview.DefaultConfig()},
	}
	if strings.TrimSpace(path) == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read session file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var messages []chat.Message
		if err := json.Unmarshal(data, &messages); err != nil {
			return s, fmt.Errorf("legacy session unreadable, starting fresh: %w", err)
		}
		s.session.Messages = messages
		return s, nil
	}

	var loaded Session
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s, fmt.Errorf("session unreadable, starting fresh: %w", err)
	}
	loaded.DiffPreview.Normalize()
	s.session = loaded
	return s, nil
}

// Path returns the active session file path ("" when persistence is off).
func (s *Store) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// SetPath switches the active session file, forcing a .json extension, and
// returns the effective path.
func (s *Store) SetPath(path string) string {
	path = strings.TrimSpace(path)
	if path != "" && !strings.EqualFold(filepath.Ext(path), ".json") {
		path += ".json"
	}
	s.mu.Lock()
	s.path = path
	s.mu.Unlock()
	return path
}

// Messages returns a copy of the persisted conversation.
func (s *Store) Messages() []chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]chat.Message(nil), s.session.Messages...)
}

// SetMessages replaces the persisted conversation.
func (s *Store) SetMessages(messages []chat.Message) {
	s.mu.Lock()
	s.session.Messages = append([]chat.Message(nil), messages...)
	s.mu.Unlock()
}

// DiffPreview exposes the shared diff-preview config. The pointer is stable
// for the store's lifetime so the previewer and /diff see the same values.
func (s *Store) DiffPreview() *diffview.Config {
	return &s.session.DiffPreview
}

// Save writes the session atomically (tmp file + rename). A missing path is
// a no-op.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(s.path) == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(s.session, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}
