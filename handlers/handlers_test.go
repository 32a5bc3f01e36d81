package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/Susanth-Aluru/to-do-web/auth"
	"github.com/Susanth-Aluru/to-do-web/models"
	"github.com/Susanth-Aluru/to-do-web/storage"
	"github.com/Susanth-Aluru/to-do-web/tasks"
)

func newTestRouter(t *testing.T) *mux.Router {
	t.Helper()
	store := storage.New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatalf("store init: %v", err)
	}
	logger := log.New(io.Discard)
	a := auth.New(store, 4)
	h := NewHandlers(store, a, tasks.NewStore(store), logger)
	return h.Router()
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: response is not JSON: %q", method, path, rec.Body.String())
		}
	}
	return rec, decoded
}

func signupAndLogin(t *testing.T, router *mux.Router, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}
	if rec, _ := doJSON(t, router, "POST", "/api/signup", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("signup: got %d: %s", rec.Code, rec.Body.String())
	}
	rec, body := doJSON(t, router, "POST", "/api/login", "", creds)
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d: %s", rec.Code, rec.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("login returned no token")
	}
	return token
}

func TestPing(t *testing.T) {
	router := newTestRouter(t)
	rec, body := doJSON(t, router, "GET", "/api/ping", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ping: got %d", rec.Code)
	}
	if body["ok"] != true || body["now"] == nil {
		t.Errorf("ping body: %v", body)
	}
}

func TestInfo(t *testing.T) {
	router := newTestRouter(t)
	rec, body := doJSON(t, router, "GET", "/api/info", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("info: got %d", rec.Code)
	}
	for _, key := range []string{"users_file", "todos_file", "sessions_file", "now"} {
		if body[key] == nil {
			t.Errorf("info missing %q: %v", key, body)
		}
	}
}

func TestSignupValidation(t *testing.T) {
	router := newTestRouter(t)
	tests := []struct {
		name string
		body any
	}{
		{"no body", nil},
		{"missing password", map[string]string{"username": "alice"}},
		{"missing username", map[string]string{"password": "pw"}},
		{"blank username", map[string]string{"username": "   ", "password": "pw"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, router, "POST", "/api/signup", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("got %d, want 400", rec.Code)
			}
			if body["error"] == nil {
				t.Errorf("missing error message: %v", body)
			}
		})
	}
}

func TestSignupDuplicateUsername(t *testing.T) {
	router := newTestRouter(t)
	creds := map[string]string{"username": "alice", "password": "pw"}
	if rec, _ := doJSON(t, router, "POST", "/api/signup", "", creds); rec.Code != http.StatusCreated {
		t.Fatalf("first signup: got %d", rec.Code)
	}
	rec, body := doJSON(t, router, "POST", "/api/signup", "", creds)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup: got %d, want 400", rec.Code)
	}
	if body["error"] != "username exists" {
		t.Errorf("duplicate signup error: %v", body["error"])
	}
}

func TestSignupResponseOmitsHash(t *testing.T) {
	router := newTestRouter(t)
	rec, body := doJSON(t, router, "POST", "/api/signup", "", map[string]string{"username": "alice", "password": "pw"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: got %d", rec.Code)
	}
	user, _ := body["user"].(map[string]any)
	if user == nil || user["username"] != "alice" || user["createdAt"] == nil {
		t.Fatalf("signup user shape: %v", body)
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("signup response leaked the password hash")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	router := newTestRouter(t)
	doJSON(t, router, "POST", "/api/signup", "", map[string]string{"username": "alice", "password": "pw"})

	rec, _ := doJSON(t, router, "POST", "/api/login", "", map[string]string{"username": "alice", "password": "nope"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d, want 401", rec.Code)
	}
	rec, _ = doJSON(t, router, "POST", "/api/login", "", map[string]string{"username": "ghost", "password": "pw"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown user: got %d, want 401", rec.Code)
	}
	rec, _ = doJSON(t, router, "POST", "/api/login", "", map[string]string{"username": "alice"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing password: got %d, want 400", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router := newTestRouter(t)
	routes := []struct{ method, path string }{
		{"POST", "/api/logout"},
		{"GET", "/api/tasks"},
		{"POST", "/api/tasks"},
		{"PUT", "/api/tasks/id_1_aa"},
		{"DELETE", "/api/tasks/id_1_aa"},
		{"POST", "/api/tasks/reorder"},
		{"GET", "/api/export"},
		{"POST", "/api/import"},
	}
	for _, rt := range routes {
		rec, _ := doJSON(t, router, rt.method, rt.path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: got %d, want 401", rt.method, rt.path, rec.Code)
		}
		rec, _ = doJSON(t, router, rt.method, rt.path, "bogus-token", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s with bad token: got %d, want 401", rt.method, rt.path, rec.Code)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")

	// empty list after signup
	rec, body := doJSON(t, router, "GET", "/api/tasks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: got %d", rec.Code)
	}
	if todos, _ := body["todos"].([]any); len(todos) != 0 {
		t.Fatalf("fresh list not empty: %v", body)
	}

	// create
	rec, body = doJSON(t, router, "POST", "/api/tasks", token, map[string]any{"title": "Buy milk"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: got %d: %s", rec.Code, rec.Body.String())
	}
	task, _ := body["task"].(map[string]any)
	id, _ := task["id"].(string)
	if id == "" || task["title"] != "Buy milk" || task["done"] != false || task["important"] != false {
		t.Fatalf("created task shape: %v", task)
	}

	// update done only
	rec, body = doJSON(t, router, "PUT", "/api/tasks/"+id, token, map[string]any{"done": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("update: got %d: %s", rec.Code, rec.Body.String())
	}
	task, _ = body["task"].(map[string]any)
	if task["done"] != true || task["title"] != "Buy milk" || task["important"] != false {
		t.Errorf("partial update leaked into other fields: %v", task)
	}

	// delete, then delete again (idempotent)
	for i := 0; i < 2; i++ {
		rec, _ = doJSON(t, router, "DELETE", "/api/tasks/"+id, token, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("delete round %d: got %d", i, rec.Code)
		}
	}
	_, body = doJSON(t, router, "GET", "/api/tasks", token, nil)
	if todos, _ := body["todos"].([]any); len(todos) != 0 {
		t.Errorf("list after delete: %v", body)
	}
}

func TestCreateTaskEmptyTitle(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")
	rec, _ := doJSON(t, router, "POST", "/api/tasks", token, map[string]any{"title": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank title: got %d, want 400", rec.Code)
	}
}

func TestUpdateUnknownTask(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")
	rec, _ := doJSON(t, router, "PUT", "/api/tasks/id_0_deadbeef", token, map[string]any{"done": true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: got %d, want 404", rec.Code)
	}
}

func TestReorder(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")

	var ids []string
	for _, title := range []string{"c", "b", "a"} {
		_, body := doJSON(t, router, "POST", "/api/tasks", token, map[string]any{"title": title})
		task := body["task"].(map[string]any)
		ids = append(ids, task["id"].(string))
	}
	// stored order is [a, b, c]; submit [b, a] and expect c to vanish
	rec, _ := doJSON(t, router, "POST", "/api/tasks/reorder", token, map[string]any{"order": []string{ids[1], ids[2]}})
	if rec.Code != http.StatusOK {
		t.Fatalf("reorder: got %d: %s", rec.Code, rec.Body.String())
	}
	_, body := doJSON(t, router, "GET", "/api/tasks", token, nil)
	todos := body["todos"].([]any)
	if len(todos) != 2 {
		t.Fatalf("reorder kept %d tasks, want 2", len(todos))
	}
	if todos[0].(map[string]any)["id"] != ids[1] || todos[1].(map[string]any)["id"] != ids[2] {
		t.Errorf("reorder order wrong: %v", todos)
	}

	// missing order field is a 400
	rec, _ = doJSON(t, router, "POST", "/api/tasks/reorder", token, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing order: got %d, want 400", rec.Code)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")
	doJSON(t, router, "POST", "/api/tasks", token, map[string]any{"title": "keep me"})

	rec, body := doJSON(t, router, "GET", "/api/export", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: got %d", rec.Code)
	}
	meta, _ := body["meta"].(map[string]any)
	if meta == nil || meta["user"] != "alice" || meta["exportedAt"] == nil {
		t.Fatalf("export meta: %v", body)
	}
	exported := body["todos"]

	// wipe via import of empty list, then restore
	rec, _ = doJSON(t, router, "POST", "/api/import", token, map[string]any{"todos": []models.Task{}})
	if rec.Code != http.StatusOK {
		t.Fatalf("empty import: got %d", rec.Code)
	}
	rec, _ = doJSON(t, router, "POST", "/api/import", token, map[string]any{"todos": exported})
	if rec.Code != http.StatusOK {
		t.Fatalf("import: got %d", rec.Code)
	}
	_, body = doJSON(t, router, "GET", "/api/tasks", token, nil)
	todos := body["todos"].([]any)
	if len(todos) != 1 || todos[0].(map[string]any)["title"] != "keep me" {
		t.Errorf("round trip list: %v", todos)
	}

	// missing todos field is a 400
	rec, _ = doJSON(t, router, "POST", "/api/import", token, map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing todos: got %d, want 400", rec.Code)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	router := newTestRouter(t)
	token := signupAndLogin(t, router, "alice", "pw")

	rec, body := doJSON(t, router, "POST", "/api/logout", token, nil)
	if rec.Code != http.StatusOK || body["ok"] != true {
		t.Fatalf("logout: got %d %v", rec.Code, body)
	}
	rec, _ = doJSON(t, router, "GET", "/api/tasks", token, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("revoked token still works: got %d", rec.Code)
	}
	// second login still fine, old token stays dead
	fresh := signupAndLoginExisting(t, router, "alice", "pw")
	if fresh == token {
		t.Error("login reissued the revoked token")
	}
}

func signupAndLoginExisting(t *testing.T, router *mux.Router, username, password string) string {
	t.Helper()
	rec, body := doJSON(t, router, "POST", "/api/login", "", map[string]string{"username": username, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: got %d", rec.Code)
	}
	return body["token"].(string)
}

func TestUsersCannotSeeEachOthersTasks(t *testing.T) {
	router := newTestRouter(t)
	aliceTok := signupAndLogin(t, router, "alice", "pw")
	bobTok := signupAndLogin(t, router, "bob", "pw")

	_, body := doJSON(t, router, "POST", "/api/tasks", aliceTok, map[string]any{"title": "private"})
	id := body["task"].(map[string]any)["id"].(string)

	_, body = doJSON(t, router, "GET", "/api/tasks", bobTok, nil)
	if todos, _ := body["todos"].([]any); len(todos) != 0 {
		t.Errorf("bob can see alice's tasks: %v", todos)
	}
	rec, _ := doJSON(t, router, "PUT", "/api/tasks/"+id, bobTok, map[string]any{"done": true})
	if rec.Code != http.StatusNotFound {
		t.Errorf("bob updating alice's task: got %d, want 404", rec.Code)
	}
}
