package project

import (
	"github.com/google/uuid"
	"github.com/reqtrace/backend/internal/domain/shared"
)

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// Task is a unit of execution inside a project. Tasks are managed by a
// sibling module; requirements only link to them.
type Task struct {
	shared.BaseEntity
	ProjectID  uuid.UUID
	Title      string
	Status     TaskStatus
	AssigneeID *string
}
