package task

import (
	"errors"
	"time"
)

type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("task not found")

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=120"`
	Description string `json:"description" binding:"required,max=1000"`
	Completed   bool   `json:"completed"`
}

// Sparse patch: nil means "leave the field alone", a non-nil pointer is an
// explicit assignment. This keeps "absent" distinguishable from "set to zero".
type UpdateTaskRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=3,max=120"`
	Description *string `json:"description" binding:"omitempty,max=1000"`
	Completed   *bool   `json:"completed"`
}

// TouchesAdminFields reports whether the patch assigns any field that only
// admins may change.
func (r UpdateTaskRequest) TouchesAdminFields() bool {
	return r.Title != nil || r.Description != nil
}
