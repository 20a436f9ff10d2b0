// Package counter implements the named-counter allocator backing the integer
// primary keys of leads and call logs.
package counter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Counter names used by the application.
const (
	LeadCounter    = "leadId"
	CallLogCounter = "callLogId"
)

// DB is the subset of pgx functionality the allocator needs. Both
// *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Allocator hands out monotonically increasing integer IDs per counter name.
//
// The counters table deliberately has no unique constraint on name: if
// concurrent writers ever race a row into existence twice, NextID reads the
// maximum across all rows for the name and rewrites a single row, so the
// sequence heals itself instead of getting stuck.
type Allocator struct {
	db DB
}

// NewAllocator creates an allocator bound to the given handle. Bind it to a
// transaction when the allocated ID must commit atomically with its row.
func NewAllocator(db DB) *Allocator {
	return &Allocator{db: db}
}

// NextID returns the next value for the named counter and persists it.
// Must run inside a transaction: the advisory lock it takes is
// transaction-scoped and serializes allocations for the same name.
func (a *Allocator) NextID(ctx context.Context, name string) (int64, error) {
	if _, err := a.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('counter:' || $1))`, name); err != nil {
		return 0, fmt.Errorf("lock counter %s: %w", name, err)
	}

	var current int64
	row := a.db.QueryRow(ctx, `SELECT COALESCE(MAX(value), 0) FROM counters WHERE name = $1`, name)
	if err := row.Scan(&current); err != nil {
		return 0, fmt.Errorf("read counter %s: %w", name, err)
	}

	next := current + 1

	// Rewrite as a single row; this collapses any duplicates left behind by
	// historical races.
	if _, err := a.db.Exec(ctx, `DELETE FROM counters WHERE name = $1`, name); err != nil {
		return 0, fmt.Errorf("reset counter %s: %w", name, err)
	}
	if _, err := a.db.Exec(ctx, `INSERT INTO counters (name, value) VALUES ($1, $2)`, name, next); err != nil {
		return 0, fmt.Errorf("write counter %s: %w", name, err)
	}

	return next, nil
}
