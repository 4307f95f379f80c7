// Package store contains the Postgres repositories for users,
// connections, and posts. Repositories translate sql.ErrNoRows into
// package sentinels and leave domain decisions to the services above.
package store

import (
	"context"
	"database/sql"
	"errors"
)

var (
	// ErrNotFound is returned when a queried row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrPairConflict is returned when a conditional connection insert
	// loses to an existing PENDING or ACCEPTED record for the same
	// unordered user pair.
	ErrPairConflict = errors.New("connection pair conflict")
)

// DBTX is the narrow database handle repositories run against. Both
// *sql.DB and *sql.Tx satisfy it.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
