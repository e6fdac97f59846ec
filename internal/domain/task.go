package domain

import "errors"

var (
	// ErrTaskNotFound is returned when looking up a non-existent task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrEmptyTaskName is returned when a task is created without a name.
	ErrEmptyTaskName = errors.New("task name is empty")
	// ErrInvalidDueDate is returned when a due date is not in YYYY-MM-DD form.
	ErrInvalidDueDate = errors.New("due date must be YYYY-MM-DD")
)

// DueDateLayout is the expected layout of Task.DueDate.
const DueDateLayout = "2006-01-02"

// Task is an entry on a user's personal task list.
type Task struct {
	ID          int64  `json:"id" yaml:"id"`
	OwnerID     int64  `json:"ownerId" yaml:"ownerId"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	DueDate     string `json:"dueDate" yaml:"dueDate"` // Opaque to the store
	IsCompleted bool   `json:"isCompleted" yaml:"isCompleted"`
}
