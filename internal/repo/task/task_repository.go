package task

import (
	"context"

	"github.com/mkrupp/campuslink/internal/domain"
)

// Repository defines the interface for task persistence.
type Repository interface {
	// CreateTask inserts a new, not yet completed task and returns it with its ID.
	// Returns ErrOwnerNotFound if the owner does not exist.
	CreateTask(ctx context.Context, ownerID int64, name, description, dueDate string) (domain.Task, error)

	// GetTask retrieves a task by ID.
	// Returns ErrTaskNotFound if no such task exists.
	GetTask(ctx context.Context, id int64) (domain.Task, error)

	// ListTasksByOwner returns all tasks of the owner in insertion order.
	ListTasksByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error)

	// CompleteTask marks a task as completed. It reports whether a task with
	// that ID exists; a missing ID is not an error.
	CompleteTask(ctx context.Context, id int64) (bool, error)

	// DeleteTask removes a task. It reports whether a task was removed; a
	// missing ID is not an error.
	DeleteTask(ctx context.Context, id int64) (bool, error)
}
