package database

import (
	"context"
	"database/sql"
	"fmt"
)

const schema = `
	CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id),
		task_name    TEXT    NOT NULL,
		description  TEXT    NOT NULL DEFAULT '',
		due_date     TEXT    NOT NULL DEFAULT '',
		is_completed INTEGER NOT NULL DEFAULT 0 CHECK (is_completed IN (0, 1))
	);

	CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);

	CREATE TABLE IF NOT EXISTS posts (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id   INTEGER NOT NULL REFERENCES users(id),
		title     TEXT    NOT NULL,
		content   TEXT    NOT NULL,
		timestamp TEXT    NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_timestamp ON posts(timestamp DESC);
`

// InitializeSchema creates the users, tasks and posts tables if they do not
// exist. It never drops or alters existing data and is safe on every startup.
func (d *Database) InitializeSchema(ctx context.Context) (err error) {
	defer func() {
		if err != nil {
			d.log.ErrorContext(ctx, "initialize schema failed", "error", err)
		} else {
			d.log.DebugContext(ctx, "schema initialized")
		}
	}()

	return d.Write(ctx, func(db *sql.DB) error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return Classify(fmt.Errorf("begin schema tx: %w", err))
		}

		if _, err := tx.ExecContext(ctx, schema); err != nil {
			_ = tx.Rollback()

			return Classify(fmt.Errorf("create schema: %w", err))
		}

		if err := tx.Commit(); err != nil {
			return Classify(fmt.Errorf("commit schema: %w", err))
		}

		return nil
	})
}
