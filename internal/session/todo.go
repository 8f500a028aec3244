package session

import (
	"errors"
	"strings"
)

// Todo item statuses.
const (
	TodoNotStarted = "not-started"
	TodoCompleted  = "completed"
)

// ErrTodoNotFound reports an unknown todo id on update/complete/delete.
var ErrTodoNotFound = errors.New("todo item not found")

// TodoItem is one entry of the session's todo list.
type TodoItem struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
}

// Todos returns a copy of the todo list.
func (s *Store) Todos() []TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TodoItem(nil), s.session.Todos...)
}

// AddTodo creates an item with id max(existing)+1 (1 when empty). Ids are
// never reused after deletion.
func (s *Store) AddTodo(title, description string) TodoItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := 1
	for _, item := range s.session.Todos {
		if item.ID >= next {
			next = item.ID + 1
		}
	}
	item := TodoItem{
		ID:          next,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      TodoNotStarted,
	}
	s.session.Todos = append(s.session.Todos, item)
	return item
}

// UpdateTodo replaces the title (and, when non-empty, description) of an
// existing item.
func (s *Store) UpdateTodo(id int, title, description string) (TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.session.Todos {
		if s.session.Todos[i].ID != id {
			continue
		}
		if strings.TrimSpace(title) != "" {
			s.session.Todos[i].Title = strings.TrimSpace(title)
		}
		if strings.TrimSpace(description) != "" {
			s.session.Todos[i].Description = strings.TrimSpace(description)
		}
		return s.session.Todos[i], nil
	}
	return TodoItem{}, ErrTodoNotFound
}

// CompleteTodo marks an item completed.
func (s *Store) CompleteTodo(id int) (TodoItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.session.Todos {
		if s.session.Todos[i].ID == id {
			s.session.Todos[i].Status = TodoCompleted
			return s.session.Todos[i], nil
		}
	}
	return TodoItem{}, ErrTodoNotFound
}

// DeleteTodo removes an item. Its id is retired, not recycled.
func (s *Store) DeleteTodo(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.session.Todos {
		if s.session.Todos[i].ID == id {
			s.session.Todos = append(s.session.Todos[:i], s.session.Todos[i+1:]...)
			return nil
		}
	}
	return ErrTodoNotFound
}
