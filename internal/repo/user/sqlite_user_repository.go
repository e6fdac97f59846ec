package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/database"
)

// SQLiteUserRepository implements Repository using SQLite as the storage backend.
type SQLiteUserRepository struct {
	db  *database.Database
	log logging.Logger
}

var _ Repository = (*SQLiteUserRepository)(nil)

// NewSQLiteUserRepository creates a new SQLiteUserRepository on the shared database.
func NewSQLiteUserRepository(db *database.Database) *SQLiteUserRepository {
	return &SQLiteUserRepository{
		db:  db,
		log: logging.GetLogger("repo.user.sqlite_user_repository"),
	}
}

// CreateUser implements Repository.CreateUser using SQLite.
func (r *SQLiteUserRepository) CreateUser(ctx context.Context, username string, passwordHash string) (id int64, err error) {
	err = r.db.Write(ctx, func(db *sql.DB) error {
		res, err := db.ExecContext(ctx,
			"INSERT INTO users (username, password_hash) VALUES (?, ?)",
			username,
			passwordHash,
		)
		if err != nil {
			return err
		}

		id, err = res.LastInsertId()

		return err
	})
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", database.Classify(err))
	}

	r.log.DebugContext(ctx, "user inserted", logging.Group("user", "id", id, "username", username))

	return id, nil
}

// GetUserByUsername implements Repository.GetUserByUsername using SQLite.
func (r *SQLiteUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getUser(ctx, "SELECT id, username, password_hash FROM users WHERE username = ?", username)
}

// GetUserByID implements Repository.GetUserByID using SQLite.
func (r *SQLiteUserRepository) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.getUser(ctx, "SELECT id, username, password_hash FROM users WHERE id = ?", id)
}

func (r *SQLiteUserRepository) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	db, err := r.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}

	var user domain.User

	err = db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("query user: %w", errors.Join(domain.ErrUserNotFound, err))
		}

		return nil, fmt.Errorf("query user: %w", database.Classify(err))
	}

	return &user, nil
}
