package db

import (
	"errors"

	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

// IsConstraintError reports whether err is a UNIQUE, FOREIGN KEY, NOT NULL or
// CHECK violation from either supported driver.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}

	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		return mattnErr.Code == sqlite3.ErrConstraint
	}

	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) {
		// Extended result codes keep the primary code in the low byte.
		return moderncErr.Code()&0xff == sqlitelib.SQLITE_CONSTRAINT
	}

	return false
}
