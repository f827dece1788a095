package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of pgx behavior the queries need. Both *pgxpool.Pool
// and pgx.Tx satisfy it.
type DBTX interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries executes chart lookups against a database handle.
type Queries struct {
	db DBTX
}

// New returns a Queries bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}
