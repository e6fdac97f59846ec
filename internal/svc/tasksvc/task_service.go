package tasksvc

import (
	"context"

	"github.com/mkrupp/campuslink/internal/domain"
)

// TaskService defines the operations on a user's personal task list.
type TaskService interface {
	// AddTask creates a task for the owner. The task starts out not completed.
	// Returns ErrEmptyTaskName for a blank name and ErrOwnerNotFound if the owner does not exist.
	AddTask(ctx context.Context, ownerID int64, name, description, dueDate string) (domain.Task, error)

	// ListTasks returns the owner's tasks in insertion order.
	ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error)

	// CompleteTask marks the task as completed. Calling it again is harmless.
	// Returns whether the task exists; a stale ID is not an error.
	CompleteTask(ctx context.Context, taskID int64) (bool, error)

	// DeleteTask removes the task.
	// Returns whether the task existed; a stale ID is not an error.
	DeleteTask(ctx context.Context, taskID int64) (bool, error)
}
