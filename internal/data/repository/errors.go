package repository

import (
	"errors"
	"fmt"

	"bus-booking/internal/apperr"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
)

// translate turns constraint violations into Conflict errors and wraps
// everything else with context.
func translate(err error, format string, args ...any) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation, pgCheckViolation:
			return apperr.Wrap(apperr.KindConflict, err, format, args...)
		}
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
