package database

import (
	"errors"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mkrupp/campuslink/internal/domain"
)

// Classify maps SQLite failures onto the domain error taxonomy. Unique
// violations become domain.ErrUserAlreadyExists, foreign key violations
// become domain.ErrOwnerNotFound and anything else is a domain.ErrStorageFault.
// Errors already carrying a domain classification are returned as is.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	for _, known := range []error{
		domain.ErrStoreInactive,
		domain.ErrUserAlreadyExists,
		domain.ErrOwnerNotFound,
		domain.ErrStorageFault,
	} {
		if errors.Is(err, known) {
			return err
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return errors.Join(domain.ErrUserAlreadyExists, err)
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return errors.Join(domain.ErrOwnerNotFound, err)
		}
	}

	return errors.Join(domain.ErrStorageFault, err)
}
