package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/mkrupp/campuslink/internal/domain"
	"github.com/mkrupp/campuslink/internal/infra/logging"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Config holds configuration for the SQLite database.
type Config struct {
	// Path is the filesystem path to the SQLite database file
	Path string `env:"PATH" default:"var/storage/campuslink.db" yaml:"path"`

	// BusyTimeout is how long SQLite waits on a locked file, in milliseconds
	BusyTimeout int `env:"BUSY_TIMEOUT" default:"5000" yaml:"busyTimeout"`
}

// Database owns the single connection to the SQLite file shared by all repositories.
// A Database that failed to open, or was closed, is inactive: every accessor
// returns domain.ErrStoreInactive instead of touching the disk.
type Database struct {
	cfg Config
	log logging.Logger

	mu        sync.RWMutex
	db        *sql.DB
	openErr   error
	writeLock sync.Mutex // go-sqlite does not support concurrent writes
}

// New creates an inactive Database for the given configuration. Call Open to connect.
func New(cfg Config) *Database {
	return &Database{
		cfg: cfg,
		log: logging.GetLogger("repo.database").With(
			logging.Group("db", "path", cfg.Path),
		),
	}
}

// Open establishes the connection. The parent directory of the file is created
// if needed. On failure the Database stays inactive and the returned error
// wraps domain.ErrConnection.
func (d *Database) Open(ctx context.Context) (err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return nil
	}

	defer func() {
		if err != nil {
			d.openErr = err
			d.log.ErrorContext(ctx, "open database failed", "error", err)
		} else {
			d.openErr = nil
			d.log.DebugContext(ctx, "database opened")
		}
	}()

	if d.cfg.Path == "" {
		return errors.Join(domain.ErrConnection, errors.New("database path is empty"))
	}

	if d.cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(d.cfg.Path), 0o755); err != nil {
			return errors.Join(domain.ErrConnection, fmt.Errorf("create database directory: %w", err))
		}
	}

	db, err := sql.Open("sqlite", d.dsn())
	if err != nil {
		return errors.Join(domain.ErrConnection, fmt.Errorf("open db: %w", err))
	}

	// One persistent connection for the process lifetime. This also keeps an
	// in-memory database alive between calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()

		return errors.Join(domain.ErrConnection, fmt.Errorf("ping db: %w", err))
	}

	var foreignKeys int
	if err := db.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&foreignKeys); err != nil {
		_ = db.Close()

		return errors.Join(domain.ErrConnection, fmt.Errorf("query foreign keys: %w", err))
	} else if foreignKeys != 1 {
		_ = db.Close()

		return errors.Join(domain.ErrConnection, errors.New("foreign keys could not be enabled"))
	}

	d.db = db

	return nil
}

func (d *Database) dsn() string {
	pragmas := []string{
		"_pragma=foreign_keys(1)",
		fmt.Sprintf("_pragma=busy_timeout(%d)", d.cfg.BusyTimeout),
	}

	sep := "?"
	if strings.Contains(d.cfg.Path, "?") {
		sep = "&"
	}

	return d.cfg.Path + sep + strings.Join(pragmas, "&")
}

// Active reports whether the connection is open.
func (d *Database) Active() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.db != nil
}

// Conn returns the open connection for read operations.
func (d *Database) Conn(ctx context.Context) (*sql.DB, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return nil, d.inactiveErr(ctx)
	}

	return d.db, nil
}

// Write runs fn with the write lock held, serializing all mutations.
func (d *Database) Write(ctx context.Context, fn func(db *sql.DB) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return d.inactiveErr(ctx)
	}

	d.writeLock.Lock()
	defer d.writeLock.Unlock()

	return fn(d.db)
}

func (d *Database) inactiveErr(ctx context.Context) error {
	d.log.WarnContext(ctx, "database connection is not active")

	if d.openErr != nil {
		return errors.Join(domain.ErrStoreInactive, d.openErr)
	}

	return domain.ErrStoreInactive
}

// Close releases the connection. It is safe to call on a Database that was
// never opened or is already closed.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}

	err := d.db.Close()
	d.db = nil

	if err != nil {
		return fmt.Errorf("close db: %w", err)
	}

	d.log.Debug("database closed")

	return nil
}
