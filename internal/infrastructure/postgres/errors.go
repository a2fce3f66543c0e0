package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ppfood/api/pkg/apperr"
)

const pgUniqueViolation = "23505"

// mapErr translates storage-layer failures into the domain taxonomy:
// unique-key violations become Conflict, missing rows become NotFound.
// Everything else passes through for the boundary layer's 500 handling.
func mapErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(notFoundMsg)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return apperr.Conflict("a record with this information already exists")
	}
	return err
}
