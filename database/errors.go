package database

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// wrap annotates err with the failing operation, translating no-rows and
// unique-constraint failures into ErrNotFound and ErrConflict.
func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return errors.Wrap(ErrNotFound, op)
	}
	if isUniqueViolation(err) {
		return errors.Wrap(ErrConflict, op)
	}
	return errors.Wrap(err, op)
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// IsNotFound reports whether err was caused by a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err was caused by a uniqueness or version clash.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
