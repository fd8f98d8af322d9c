// Package postgres implements the repository interfaces on top of gorm and
// PostgreSQL. Every check-then-write runs in one database transaction.
package postgres

import (
	stderrors "errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mroshb/film_catalog/pkg/errors"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

// translate maps a gorm/pgx error onto the application error codes. Errors
// that already carry a code pass through untouched.
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}

	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	var pgErr *pgconn.PgError
	switch {
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrap(err, errors.ErrCodeConflict, msg)
	case stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return errors.Wrap(err, errors.ErrCodeConflict, msg)
	case stderrors.Is(err, gorm.ErrInvalidData):
		return errors.Wrap(err, errors.ErrCodeValidation, msg)
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrap(err, errors.ErrCodeNotFound, msg)
	default:
		return errors.Wrap(err, errors.ErrCodeStorage, msg)
	}
}
