package models

// Task represents a single to-do item inside a user's list.
type Task struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Done      bool   `json:"done"`
	Important bool   `json:"important"`
	CreatedAt string `json:"createdAt"`
}

// TodosMap maps a username to that user's ordered task list. It is the
// sole task storage structure, persisted as one file.
type TodosMap map[string][]Task

// CreateTaskRequest is the body of POST /api/tasks. Done and Important
// default to false when omitted.
type CreateTaskRequest struct {
	Title     string `json:"title"`
	Done      bool   `json:"done"`
	Important bool   `json:"important"`
}

// TaskPatch carries the fields settable via PUT /api/tasks/{id}. Nil
// fields are left untouched; id and createdAt are never settable.
type TaskPatch struct {
	Title     *string `json:"title"`
	Done      *bool   `json:"done"`
	Important *bool   `json:"important"`
}
