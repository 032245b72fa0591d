package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	pkgerrors "github.com/angelmondragon/gobacks-backend/pkg/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgIntegrityClass      = "23"
	pgConnectionClass     = "08"
	pgAdminShutdownClass  = "57P"
)

// IsUniqueViolation reports whether the provided error references a unique
// constraint. When constraintName is provided, the helper looks for the
// constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if constraintName != "" {
		return strings.Contains(err.Error(), constraintName)
	}
	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgUniqueViolation
	}
	if liteErr, ok := asSQLiteError(err); ok {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "duplicate key value")
}

// IsForeignKeyViolation reports whether err is a referential-integrity failure.
func IsForeignKeyViolation(err error) bool {
	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgForeignKeyViolation
	}
	if liteErr, ok := asSQLiteError(err); ok {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// IsConstraintViolation reports any integrity constraint failure raised by the store.
func IsConstraintViolation(err error) bool {
	if pgErr := asPgError(err); pgErr != nil {
		return strings.HasPrefix(pgErr.Code, pgIntegrityClass)
	}
	if liteErr, ok := asSQLiteError(err); ok {
		return liteErr.Code == sqlite3.ErrConstraint
	}
	return false
}

// IsUnavailable reports connection or transport level failures.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	if pgErr := asPgError(err); pgErr != nil {
		return strings.HasPrefix(pgErr.Code, pgConnectionClass) || strings.HasPrefix(pgErr.Code, pgAdminShutdownClass)
	}
	if liteErr, ok := asSQLiteError(err); ok {
		switch liteErr.Code {
		case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrCantOpen, sqlite3.ErrIoErr:
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is GORM's missing-record sentinel.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// Classify wraps a store error with the matching taxonomy code. Typed errors
// and context cancellations pass through untouched.
func Classify(err error, message string) error {
	if err == nil {
		return nil
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, message)
	}
	switch {
	case IsNotFound(err):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, message)
	case IsConstraintViolation(err):
		return pkgerrors.Wrap(pkgerrors.CodeConstraint, err, message)
	case IsUnavailable(err):
		return pkgerrors.Wrap(pkgerrors.CodeUnavailable, err, message)
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, message)
	}
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}
	return nil
}

func asSQLiteError(err error) (sqlite3.Error, bool) {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr, true
	}
	return sqlite3.Error{}, false
}
