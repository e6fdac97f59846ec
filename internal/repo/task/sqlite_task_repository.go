package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/database"
)

const taskColumns = "id, user_id, task_name, description, due_date, is_completed"

// SQLiteTaskRepository implements Repository using SQLite as the storage backend.
type SQLiteTaskRepository struct {
	db  *database.Database
	log logging.Logger
}

var _ Repository = (*SQLiteTaskRepository)(nil)

// NewSQLiteTaskRepository creates a new SQLiteTaskRepository on the shared database.
func NewSQLiteTaskRepository(db *database.Database) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{
		db:  db,
		log: logging.GetLogger("repo.task.sqlite_task_repository"),
	}
}

// CreateTask implements Repository.CreateTask using SQLite.
func (r *SQLiteTaskRepository) CreateTask(
	ctx context.Context,
	ownerID int64,
	name, description, dueDate string,
) (domain.Task, error) {
	var id int64

	err := r.db.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			"INSERT INTO tasks (user_id, task_name, description, due_date, is_completed) VALUES (?, ?, ?, ?, 0)",
			ownerID, name, description, dueDate,
		)
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()

		return err
	})
	if err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", database.Classify(err))
	}

	r.log.DebugContext(ctx, "task inserted", logging.Group("task", "id", id, "ownerId", ownerID))

	return domain.Task{
		ID:          id,
		OwnerID:     ownerID,
		Name:        name,
		Description: description,
		DueDate:     dueDate,
		IsCompleted: false,
	}, nil
}

// GetTask implements Repository.GetTask using SQLite.
func (r *SQLiteTaskRepository) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return domain.Task{}, fmt.Errorf("query task: %w", err)
	}

	task, err := scanTask(db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Task{}, fmt.Errorf("query task: %w", errors.Join(domain.ErrTaskNotFound, err))
		}

		return domain.Task{}, fmt.Errorf("query task: %w", database.Classify(err))
	}

	return task, nil
}

// ListTasksByOwner implements Repository.ListTasksByOwner using SQLite.
func (r *SQLiteTaskRepository) ListTasksByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}

	rows, err := db.QueryContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE user_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", database.Classify(err))
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", database.Classify(err))
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", database.Classify(err))
	}

	return tasks, nil
}

// CompleteTask implements Repository.CompleteTask using SQLite.
func (r *SQLiteTaskRepository) CompleteTask(ctx context.Context, id int64) (bool, error) {
	found, err := r.exec(ctx, "UPDATE tasks SET is_completed = 1 WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("complete task: %w", err)
	}

	return found, nil
}

// DeleteTask implements Repository.DeleteTask using SQLite.
func (r *SQLiteTaskRepository) DeleteTask(ctx context.Context, id int64) (bool, error) {
	found, err := r.exec(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	return found, nil
}

func (r *SQLiteTaskRepository) exec(ctx context.Context, query string, id int64) (bool, error) {
	var affected int64

	err := r.db.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx, query, id)
		if err != nil {
			return err
		}

		affected, err = res.RowsAffected()

		return err
	})
	if err != nil {
		return false, database.Classify(err)
	}

	if affected == 0 {
		r.log.DebugContext(ctx, "no task matched", logging.Group("task", "id", id))
	}

	return affected > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var task domain.Task

	err := row.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Name,
		&task.Description,
		&task.DueDate,
		&task.IsCompleted,
	)

	return task, err //nolint:wrapcheck
}
