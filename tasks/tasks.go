// --- tasks/tasks.go ---
package tasks

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Susanth-Aluru/to-do-web/models"
	"github.com/Susanth-Aluru/to-do-web/storage"
)

var (
	// ErrTitleRequired means the submitted title was empty after
	// trimming whitespace.
	ErrTitleRequired = errors.New("title required")
	// ErrTaskNotFound means no task with the given id exists in the
	// user's list.
	ErrTaskNotFound = errors.New("task not found")
)

// Store operates on one user's ordered task list inside the todos
// document. Ownership is enforced purely by the username key: a caller
// can only ever touch the list its token resolves to.
type Store struct {
	files *storage.Store
}

// NewStore builds a task store over files.
func NewStore(files *storage.Store) *Store {
	return &Store{files: files}
}

// List returns the user's tasks in stored order, newest first by
// construction. A user with no tasks gets an empty list.
func (s *Store) List(username string) []models.Task {
	if lst, ok := s.files.LoadTodos()[username]; ok && lst != nil {
		return lst
	}
	return []models.Task{}
}

// Create validates the title, prepends the new task to the user's
// list, persists it, and returns it.
func (s *Store) Create(username string, req models.CreateTaskRequest) (models.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return models.Task{}, ErrTitleRequired
	}
	id, err := newID()
	if err != nil {
		return models.Task{}, err
	}
	task := models.Task{
		ID:        id,
		Title:     title,
		Done:      req.Done,
		Important: req.Important,
		CreatedAt: models.Now(),
	}

	m := s.files.LoadTodos()
	m[username] = append([]models.Task{task}, m[username]...)
	if err := s.files.SaveTodos(m); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// Update applies patch to the first task whose id matches and returns
// the updated task. Nil patch fields are left untouched; id and
// createdAt are immutable.
func (s *Store) Update(username, id string, patch models.TaskPatch) (models.Task, error) {
	m := s.files.LoadTodos()
	lst := m[username]
	for i := range lst {
		if lst[i].ID != id {
			continue
		}
		if patch.Title != nil {
			lst[i].Title = *patch.Title
		}
		if patch.Done != nil {
			lst[i].Done = *patch.Done
		}
		if patch.Important != nil {
			lst[i].Important = *patch.Important
		}
		m[username] = lst
		if err := s.files.SaveTodos(m); err != nil {
			return models.Task{}, err
		}
		return lst[i], nil
	}
	return models.Task{}, ErrTaskNotFound
}

// Delete removes any task with the given id. Deleting an id that does
// not exist is a no-op, not an error.
func (s *Store) Delete(username, id string) error {
	m := s.files.LoadTodos()
	lst := m[username]
	kept := make([]models.Task, 0, len(lst))
	for _, t := range lst {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	m[username] = kept
	return s.files.SaveTodos(m)
}

// Reorder rebuilds the user's list following order. Ids not present in
// the current list are skipped, and existing tasks whose id is absent
// from order are dropped from the list entirely. Duplicate ids yield
// duplicate entries.
func (s *Store) Reorder(username string, order []string) error {
	m := s.files.LoadTodos()
	byID := make(map[string]models.Task, len(m[username]))
	for _, t := range m[username] {
		byID[t.ID] = t
	}
	rebuilt := make([]models.Task, 0, len(order))
	for _, id := range order {
		if t, ok := byID[id]; ok {
			rebuilt = append(rebuilt, t)
		}
	}
	m[username] = rebuilt
	return s.files.SaveTodos(m)
}

// ExportMeta describes an export snapshot.
type ExportMeta struct {
	User       string `json:"user"`
	ExportedAt string `json:"exportedAt"`
}

// ExportDoc is the payload of GET /api/export.
type ExportDoc struct {
	Meta  ExportMeta    `json:"meta"`
	Todos []models.Task `json:"todos"`
}

// Export returns a read-only snapshot of the user's list.
func (s *Store) Export(username string) ExportDoc {
	return ExportDoc{
		Meta:  ExportMeta{User: username, ExportedAt: models.Now()},
		Todos: s.List(username),
	}
}

// Import wholesale-replaces the user's list with todos. No merge, no
// id validation, no dedup: the supplied tasks are stored verbatim.
func (s *Store) Import(username string, todos []models.Task) error {
	if todos == nil {
		todos = []models.Task{}
	}
	m := s.files.LoadTodos()
	m[username] = todos
	return s.files.SaveTodos(m)
}

// newID returns "id_<epoch millis>_<8 hex chars>". Uniqueness rests on
// the random suffix; no collision check is made against the list.
func newID() (string, error) {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate task id: %w", err)
	}
	return fmt.Sprintf("id_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf)), nil
}
