// AngelaMos | 2026
// errors.go

package sqlstore

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/carterperez-dev/currency-tracker/internal/core"
)

type violation int

const (
	violationNone violation = iota
	violationUnique
	violationCheck
	violationForeignKey
	violationNotNull
)

func classifyViolation(err error) violation {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return violationUnique
		case "23514":
			return violationCheck
		case "23503":
			return violationForeignKey
		case "23502":
			return violationNotNull
		}
		return violationNone
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return violationUnique
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return violationCheck
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return violationForeignKey
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return violationNotNull
		}
	}

	return violationNone
}

func isUniqueViolation(err error) bool {
	return classifyViolation(err) == violationUnique
}

// wrap maps driver failures onto the store error taxonomy.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}

	for _, sentinel := range []error{
		core.ErrNotFound, core.ErrInvalidInput,
		core.ErrDuplicateKey, core.ErrConstraint,
	} {
		if errors.Is(err, sentinel) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	switch classifyViolation(err) {
	case violationUnique:
		return fmt.Errorf("%s: %w", op, core.ErrDuplicateKey)
	case violationCheck, violationNotNull:
		return fmt.Errorf("%s: %w: %w", op, core.ErrConstraint, core.ErrInvalidInput)
	case violationForeignKey:
		return fmt.Errorf("%s: %w: %w", op, core.ErrConstraint, core.ErrNotFound)
	}

	return fmt.Errorf("%s: %w: %w", op, core.ErrStore, err)
}
