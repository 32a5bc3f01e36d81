package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/Susanth-Aluru/to-do-web/auth"
	"github.com/Susanth-Aluru/to-do-web/middleware"
	"github.com/Susanth-Aluru/to-do-web/models"
	"github.com/Susanth-Aluru/to-do-web/storage"
	"github.com/Susanth-Aluru/to-do-web/tasks"
)

// Handlers holds the injected components shared by all routes.
type Handlers struct {
	Store     *storage.Store
	Auth      *auth.Auth
	Tasks     *tasks.Store
	Log       *log.Logger
	StaticDir string
}

// NewHandlers is a constructor for the Handlers struct.
func NewHandlers(store *storage.Store, a *auth.Auth, ts *tasks.Store, logger *log.Logger) *Handlers {
	return &Handlers{Store: store, Auth: a, Tasks: ts, Log: logger, StaticDir: "static"}
}

// respondWithJSON is a helper function to format and send JSON responses.
func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// respondWithError sends the {"error": message} shape used by every
// failure branch of the API.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// decodeBody fills v from the request body. Absent or malformed bodies
// leave v at its zero value so that field-level validation fires
// instead of a decode error.
func decodeBody(r *http.Request, v any) {
	defer r.Body.Close()
	_ = json.NewDecoder(r.Body).Decode(v)
}

// currentUser pulls the username bound by the auth middleware.
func (h *Handlers) currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	username, ok := middleware.Username(r)
	if !ok {
		h.Log.Error("username not found in context")
		respondWithError(w, http.StatusUnauthorized, "missing token")
		return "", false
	}
	return username, true
}

// Index serves the static front-end page.
func (h *Handlers) Index(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(h.StaticDir, "index.html"))
}

// Ping reports liveness.
func (h *Handlers) Ping(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "now": models.Now()})
}

// Info lists the backing file paths, mirroring the front-end's debug view.
func (h *Handlers) Info(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"users_file":    h.Store.UsersPath,
		"todos_file":    h.Store.TodosPath,
		"sessions_file": h.Store.SessionsPath,
		"now":           models.Now(),
	})
}

// Signup registers a new user and seeds an empty task list for them.
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	decodeBody(r, &req)

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	users := h.Store.LoadUsers()
	for _, u := range users {
		if u.Username == username {
			respondWithError(w, http.StatusBadRequest, "username exists")
			return
		}
	}

	hash, err := h.Auth.Hash(req.Password)
	if err != nil {
		h.Log.Error("password hashing failed", "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user := models.User{Username: username, PasswordHash: hash, CreatedAt: models.Now()}
	users = append(users, user)
	if err := h.Store.SaveUsers(users); err != nil {
		h.Log.Error("save users failed", "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	// every signed-up user gets an entry in the todos map, even if empty
	m := h.Store.LoadTodos()
	if _, ok := m[username]; !ok {
		m[username] = []models.Task{}
		if err := h.Store.SaveTodos(m); err != nil {
			h.Log.Error("seed todos failed", "user", username, "err", err)
		}
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "user": user.Public()})
}

// Login checks credentials and issues a fresh bearer token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	decodeBody(r, &req)

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "username and password required")
		return
	}

	var user *models.User
	for _, u := range h.Store.LoadUsers() {
		if u.Username == username {
			user = &u
			break
		}
	}
	if user == nil || !h.Auth.Verify(user.PasswordHash, req.Password) {
		respondWithError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.Auth.IssueToken(username)
	if err != nil {
		h.Log.Error("issue token failed", "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token, "user": user.Public()})
}

// Logout revokes the presented token.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	// the middleware already validated the header shape
	token, _ := auth.TokenFromHeader(r.Header.Get("Authorization"))
	if err := h.Auth.RevokeToken(token); err != nil {
		h.Log.Error("revoke token failed", "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to end session")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// GetTasks returns the caller's task list.
func (h *Handlers) GetTasks(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"todos": h.Tasks.List(username)})
}

// CreateTask adds a task to the front of the caller's list.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req models.CreateTaskRequest
	decodeBody(r, &req)

	task, err := h.Tasks.Create(username, req)
	if errors.Is(err, tasks.ErrTitleRequired) {
		respondWithError(w, http.StatusBadRequest, "title required")
		return
	}
	if err != nil {
		h.Log.Error("create task failed", "user", username, "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create task")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]any{"ok": true, "task": task})
}

// UpdateTask patches a task's title/done/important fields.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var patch models.TaskPatch
	decodeBody(r, &patch)

	task, err := h.Tasks.Update(username, mux.Vars(r)["id"], patch)
	if errors.Is(err, tasks.ErrTaskNotFound) {
		respondWithError(w, http.StatusNotFound, "task not found")
		return
	}
	if err != nil {
		h.Log.Error("update task failed", "user", username, "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to update task")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true, "task": task})
}

// DeleteTask removes a task; unknown ids are a silent no-op.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	if err := h.Tasks.Delete(username, mux.Vars(r)["id"]); err != nil {
		h.Log.Error("delete task failed", "user", username, "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ReorderTasks rebuilds the caller's list from the submitted id order.
// Ids omitted from the order drop out of the list; see DESIGN.md.
func (h *Handlers) ReorderTasks(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Order []string `json:"order"`
	}
	decodeBody(r, &req)
	if req.Order == nil {
		respondWithError(w, http.StatusBadRequest, "order must be list of ids")
		return
	}
	if err := h.Tasks.Reorder(username, req.Order); err != nil {
		h.Log.Error("reorder failed", "user", username, "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to reorder tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// ExportTasks returns a snapshot of the caller's list with meta.
func (h *Handlers) ExportTasks(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	respondWithJSON(w, http.StatusOK, h.Tasks.Export(username))
}

// ImportTasks wholesale-replaces the caller's list.
func (h *Handlers) ImportTasks(w http.ResponseWriter, r *http.Request) {
	username, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	var req struct {
		Todos []models.Task `json:"todos"`
	}
	decodeBody(r, &req)
	if req.Todos == nil {
		respondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.Tasks.Import(username, req.Todos); err != nil {
		h.Log.Error("import failed", "user", username, "err", err)
		respondWithError(w, http.StatusInternalServerError, "failed to import tasks")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}
