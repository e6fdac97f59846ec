// Package campus wires the CampusLink store: one SQLite database shared by the
// user, task and post repositories, and the services built on top of them.
package campus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkrupp/campuslink/internal/infra/logging"
	"github.com/mkrupp/campuslink/internal/repo/database"
	"github.com/mkrupp/campuslink/internal/repo/post"
	"github.com/mkrupp/campuslink/internal/repo/task"
	"github.com/mkrupp/campuslink/internal/repo/user"
	"github.com/mkrupp/campuslink/internal/svc/authsvc"
	"github.com/mkrupp/campuslink/internal/svc/bulletinsvc"
	"github.com/mkrupp/campuslink/internal/svc/tasksvc"
)

// Config groups the settings of every store component.
type Config struct {
	Database database.Config    `envPrefix:"DATABASE_" yaml:"database"`
	Auth     authsvc.AuthConfig `envPrefix:"AUTH_"     yaml:"auth"`
}

// Option customizes Open.
type Option func(*options)

type options struct {
	clock func() time.Time
}

// WithClock sets the time source used to stamp new posts.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.clock = now
	}
}

// Campus is the opened store together with its services.
type Campus struct {
	DB *database.Database

	Users user.Repository
	Tasks task.Repository
	Posts post.Repository

	Auth     *authsvc.AuthService
	TaskSvc  tasksvc.TaskService
	Bulletin bulletinsvc.BulletinService

	log logging.Logger
}

// Open connects to the database, applies the schema and wires all services.
//
// Open always returns a usable *Campus. When the database cannot be opened
// or the schema cannot be applied, the error is returned alongside a
// degraded Campus whose operations fail with domain.ErrStoreInactive.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Campus, error) {
	o := options{clock: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	db := database.New(cfg.Database)
	users := user.NewSQLiteUserRepository(db)

	c := &Campus{
		DB:    db,
		Users: users,
		Tasks: task.NewSQLiteTaskRepository(db),
		Posts: post.NewSQLitePostRepository(db, post.WithClock(o.clock)),
		Auth:  authsvc.NewAuthService(users, cfg.Auth),
		log:   logging.GetLogger("svc.campus.campus"),
	}

	c.TaskSvc = tasksvc.NewRepoTaskService(c.Tasks)
	c.Bulletin = bulletinsvc.NewRepoBulletinService(c.Posts)

	if err := db.Open(ctx); err != nil {
		c.log.ErrorContext(ctx, "store unavailable", "error", err)

		return c, fmt.Errorf("open database: %w", err)
	}

	if err := db.InitializeSchema(ctx); err != nil {
		c.log.ErrorContext(ctx, "store unavailable", "error", err)

		return c, errors.Join(fmt.Errorf("initialize schema: %w", err), db.Close())
	}

	c.log.DebugContext(ctx, "store ready", "path", cfg.Database.Path)

	return c, nil
}

// Active reports whether the underlying database is open.
func (c *Campus) Active() bool {
	return c.DB.Active()
}

// Close closes the database. It is safe to call more than once.
func (c *Campus) Close() error {
	if err := c.DB.Close(); err != nil {
		return fmt.Errorf("close campus: %w", err)
	}

	return nil
}
