// --- storage/store.go ---
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Susanth-Aluru/to-do-web/models"
)

// Store holds the paths of the three JSON documents backing the app.
// Every load reads the file fresh from disk and every save rewrites it
// whole; the files are the single source of truth. There is no locking
// across concurrent read-modify-write cycles (last writer wins).
type Store struct {
	UsersPath    string
	TodosPath    string
	SessionsPath string
}

// New builds a Store rooted at dataDir.
func New(dataDir string) *Store {
	return &Store{
		UsersPath:    filepath.Join(dataDir, "users.json"),
		TodosPath:    filepath.Join(dataDir, "todos.json"),
		SessionsPath: filepath.Join(dataDir, "sessions.json"),
	}
}

// Init creates the data directory and seeds any missing file with its
// empty default, so first run starts from a valid state.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.UsersPath), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	seeds := []struct {
		path string
		doc  any
	}{
		{s.UsersPath, []models.User{}},
		{s.TodosPath, models.TodosMap{}},
		{s.SessionsPath, map[string]models.Session{}},
	}
	for _, seed := range seeds {
		if _, err := os.Stat(seed.path); err == nil {
			continue
		}
		if err := writeJSON(seed.path, seed.doc); err != nil {
			return fmt.Errorf("seed %s: %w", seed.path, err)
		}
	}
	return nil
}

// LoadUsers returns the stored user list. Any read or parse failure
// yields an empty list; callers never see storage errors on read.
func (s *Store) LoadUsers() []models.User {
	var users []models.User
	if err := readJSON(s.UsersPath, &users); err != nil || users == nil {
		return []models.User{}
	}
	return users
}

// SaveUsers rewrites the users file.
func (s *Store) SaveUsers(users []models.User) error {
	return writeJSON(s.UsersPath, users)
}

// LoadTodos returns the username -> task list mapping, empty on any
// read failure.
func (s *Store) LoadTodos() models.TodosMap {
	var m models.TodosMap
	if err := readJSON(s.TodosPath, &m); err != nil || m == nil {
		return models.TodosMap{}
	}
	return m
}

// SaveTodos rewrites the todos file.
func (s *Store) SaveTodos(m models.TodosMap) error {
	return writeJSON(s.TodosPath, m)
}

// LoadSessions returns the token -> session mapping, empty on any read
// failure.
func (s *Store) LoadSessions() map[string]models.Session {
	var m map[string]models.Session
	if err := readJSON(s.SessionsPath, &m); err != nil || m == nil {
		return map[string]models.Session{}
	}
	return m
}

// SaveSessions rewrites the sessions file.
func (s *Store) SaveSessions(m map[string]models.Session) error {
	return writeJSON(s.SessionsPath, m)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSON serializes v pretty-printed to a temp file next to path,
// then renames it over path. A crash mid-write leaves the previous
// good file in place; no partial file is ever observable.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
