package mysql

import (
	"context"
	"database/sql"

	"lightbnb/internal/domain"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewRepositories wires the three repositories onto one handle, with every
// statement recorded in the query metrics.
func NewRepositories(db DBTX, match domain.EmailMatch) domain.Repositories {
	db = instrumented{db: db}
	return domain.Repositories{
		Users:        NewUserRepo(db, match),
		Reservations: NewReservationRepo(db),
		Properties:   NewPropertyRepo(db),
	}
}

// scanner is the common part of *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}
