package store

import (
	"database/sql"
	"errors"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrNotFound is returned when a referenced id does not exist, or when a
// caller does not own a user-scoped row.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned on unique-name violations and on deletes blocked
// by live references.
var ErrConflict = errors.New("conflict")

// isUniqueViolation reports whether err is the driver's UNIQUE constraint
// failure. The name-exists pre-checks race against concurrent inserts;
// when a writer loses that race the schema constraint still fires, and the
// driver error must map to ErrConflict instead of surfacing as a 500.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

// dbtx is satisfied by both *sql.DB and *sql.Tx, so row helpers can run
// inside or outside a transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

func userExists(q dbtx, id int64) (bool, error) {
	var n int64
	err := q.QueryRow(`SELECT id FROM users WHERE id = ?`, id).Scan(&n)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
