package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a lookup or owner-scoped mutation matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when a signup collides with an existing email.
	ErrDuplicateEmail = errors.New("account with this email already exists")
)

const pgUniqueViolation = "23505"

// notFound maps pgx.ErrNoRows to ErrNotFound and passes other errors through.
func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
