package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Susanth-Aluru/to-do-web/middleware"
)

// Router builds the route table. Task, export, import, and logout
// routes go through the bearer-token middleware; everything else is
// public.
func (h *Handlers) Router() *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/", h.Index).Methods("GET")
	router.HandleFunc("/api/ping", h.Ping).Methods("GET")
	router.HandleFunc("/api/info", h.Info).Methods("GET")
	router.HandleFunc("/api/signup", h.Signup).Methods("POST")
	router.HandleFunc("/api/login", h.Login).Methods("POST")

	router.Handle("/api/logout", h.protect(h.Logout)).Methods("POST")
	router.Handle("/api/tasks", h.protect(h.GetTasks)).Methods("GET")
	router.Handle("/api/tasks", h.protect(h.CreateTask)).Methods("POST")
	router.Handle("/api/tasks/reorder", h.protect(h.ReorderTasks)).Methods("POST")
	router.Handle("/api/tasks/{id}", h.protect(h.UpdateTask)).Methods("PUT")
	router.Handle("/api/tasks/{id}", h.protect(h.DeleteTask)).Methods("DELETE")
	router.Handle("/api/export", h.protect(h.ExportTasks)).Methods("GET")
	router.Handle("/api/import", h.protect(h.ImportTasks)).Methods("POST")

	return router
}

func (h *Handlers) protect(fn http.HandlerFunc) http.Handler {
	return middleware.Auth(h.Auth, fn)
}
