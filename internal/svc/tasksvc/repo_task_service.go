package tasksvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/task"
)

// RepoTaskService implements TaskService on top of a task repository.
type RepoTaskService struct {
	repo task.Repository
	log  logging.Logger
}

var _ TaskService = (*RepoTaskService)(nil)

// NewRepoTaskService creates a new RepoTaskService.
func NewRepoTaskService(repo task.Repository) *RepoTaskService {
	return &RepoTaskService{
		repo: repo,
		log:  logging.GetLogger("svc.tasksvc.repo_task_service"),
	}
}

// ValidateDueDate checks that s is a calendar date in YYYY-MM-DD form.
// The store itself keeps due dates as opaque text; front ends call this
// before AddTask.
func ValidateDueDate(s string) error {
	if _, err := time.Parse(domain.DueDateLayout, s); err != nil {
		return errors.Join(domain.ErrInvalidDueDate, err)
	}

	return nil
}

// AddTask implements TaskService.AddTask.
func (s *RepoTaskService) AddTask(
	ctx context.Context,
	ownerID int64,
	name, description, dueDate string,
) (created domain.Task, err error) {
	log := s.log.With(logging.Group("task", "ownerId", ownerID, "name", name))

	defer func() {
		switch {
		case err == nil:
			log.DebugContext(ctx, "task added", "id", created.ID)
		case errors.Is(err, domain.ErrEmptyTaskName):
			log.WarnContext(ctx, "task rejected", "error", err)
		default:
			log.ErrorContext(ctx, "add task failed", "error", err)
		}
	}()

	if strings.TrimSpace(name) == "" {
		return domain.Task{}, domain.ErrEmptyTaskName
	}

	created, err = s.repo.CreateTask(ctx, ownerID, name, description, dueDate)
	if err != nil {
		return domain.Task{}, fmt.Errorf("create task: %w", err)
	}

	return created, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *RepoTaskService) ListTasks(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	tasks, err := s.repo.ListTasksByOwner(ctx, ownerID)
	if err != nil {
		s.log.ErrorContext(ctx, "list tasks failed", "ownerId", ownerID, "error", err)

		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// CompleteTask implements TaskService.CompleteTask.
func (s *RepoTaskService) CompleteTask(ctx context.Context, taskID int64) (bool, error) {
	log := s.log.With(logging.Group("task", "id", taskID))

	found, err := s.repo.CompleteTask(ctx, taskID)
	if err != nil {
		log.ErrorContext(ctx, "complete task failed", "error", err)

		return false, fmt.Errorf("complete task: %w", err)
	}

	if !found {
		log.WarnContext(ctx, "complete task: no such task")
	}

	return found, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *RepoTaskService) DeleteTask(ctx context.Context, taskID int64) (bool, error) {
	log := s.log.With(logging.Group("task", "id", taskID))

	found, err := s.repo.DeleteTask(ctx, taskID)
	if err != nil {
		log.ErrorContext(ctx, "delete task failed", "error", err)

		return false, fmt.Errorf("delete task: %w", err)
	}

	if !found {
		log.WarnContext(ctx, "delete task: no such task")
	}

	return found, nil
}
