// Package repository provides database access for leads.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"legalintake_backend/internal/counter"
	"legalintake_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leadNotFoundMsg = "lead not found"

// Lead is a prospective client case record.
type Lead struct {
	ID              int64
	CallID          *string
	Name            string
	Phone           string
	CaseType        string
	Urgency         string
	Status          string
	AttorneyID      *int64
	Summary         *string
	Transcript      *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastContactedAt *time.Time
}

// Patch is a partial update. Nil means the key was absent and is left
// untouched; a non-nil pointer overwrites, including with an empty value.
type Patch struct {
	CallID     *string
	Name       *string
	Phone      *string
	CaseType   *string
	Urgency    *string
	Status     *string
	AttorneyID *int64
	Summary    *string
	Transcript *string
}

// Store is the lead persistence surface the service layer runs against.
// Implemented by both the pooled Repository and its transaction-bound form.
type Store interface {
	List(ctx context.Context) ([]Lead, error)
	GetByID(ctx context.Context, id int64) (*Lead, error)
	FindByCallID(ctx context.Context, callID string) (*Lead, error)
	FindIDByCallLogLink(ctx context.Context, callID string) (int64, bool, error)
	FindRecentByPhoneDigits(ctx context.Context, digits string, since time.Time) (*Lead, error)
	Insert(ctx context.Context, lead Lead) (*Lead, error)
	ApplyPatch(ctx context.Context, id int64, patch Patch) (*Lead, error)
	AssignAttorney(ctx context.Context, id, attorneyID int64) (*Lead, error)
	NextID(ctx context.Context) (int64, error)
}

// TxStore is a Store that can run a closure inside a transaction.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
	WithCallLock(ctx context.Context, callID string, fn func(Store) error) error
}

// DB is the subset of pgx used here; both *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database operations for leads.
type Repository struct {
	pool *pgxpool.Pool
	db   DB
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// WithTx runs fn inside a plain transaction. Used by flows that need the id
// allocation and the insert to commit atomically but have no call id to lock.
func (r *Repository) WithTx(ctx context.Context, fn func(Store) error) error {
	if r.pool == nil {
		return errors.New("WithTx: repository already transaction-bound")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// WithCallLock runs fn inside a transaction holding an advisory lock on the
// call id, serializing concurrent webhook deliveries for the same call so the
// lookup-then-write upsert cannot lose an update.
func (r *Repository) WithCallLock(ctx context.Context, callID string, fn func(Store) error) error {
	if r.pool == nil {
		return errors.New("WithCallLock: repository already transaction-bound")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, callID); err != nil {
		return fmt.Errorf("lock call %s: %w", callID, err)
	}

	if err := fn(&Repository{db: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

const leadColumns = `
	id, call_id, name, phone, case_type, urgency, status, attorney_id,
	summary, transcript, created_at, updated_at, last_contacted_at`

// List returns all leads, newest first.
func (r *Repository) List(ctx context.Context) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

// GetByID fetches a single lead by its integer id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`

	lead, err := scanLead(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(leadNotFoundMsg)
	}
	return lead, err
}

// FindByCallID scans leads directly by call id. Legacy rows predate the
// call-log lead link, so this is the fallback lookup. Returns nil when no
// lead matches.
func (r *Repository) FindByCallID(ctx context.Context, callID string) (*Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE call_id = $1 ORDER BY created_at DESC LIMIT 1`

	lead, err := scanLead(r.db.QueryRow(ctx, query, callID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

// FindIDByCallLogLink resolves a lead id through the call log's lead link,
// the authoritative correlation for calls already reconciled once.
func (r *Repository) FindIDByCallLogLink(ctx context.Context, callID string) (int64, bool, error) {
	query := `
		SELECT lead_id FROM call_logs
		WHERE call_id = $1 AND lead_id IS NOT NULL
		ORDER BY created_at DESC
		LIMIT 1`

	var leadID int64
	err := r.db.QueryRow(ctx, query, callID).Scan(&leadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("find lead by call log link: %w", err)
	}
	return leadID, true, nil
}

// FindRecentByPhoneDigits returns the newest lead created since the given
// time whose phone digits match. Used to absorb provider call-id churn.
func (r *Repository) FindRecentByPhoneDigits(ctx context.Context, digits string, since time.Time) (*Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE regexp_replace(phone, '\D', '', 'g') = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	lead, err := scanLead(r.db.QueryRow(ctx, query, digits, since))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

// Insert persists a new lead. The caller supplies the id from NextID.
func (r *Repository) Insert(ctx context.Context, lead Lead) (*Lead, error) {
	query := `
		INSERT INTO leads (
			id, call_id, name, phone, case_type, urgency, status,
			attorney_id, summary, transcript, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING ` + leadColumns

	now := time.Now()
	return scanLead(r.db.QueryRow(ctx, query,
		lead.ID,
		lead.CallID,
		lead.Name,
		lead.Phone,
		lead.CaseType,
		lead.Urgency,
		lead.Status,
		lead.AttorneyID,
		lead.Summary,
		lead.Transcript,
		now,
	))
}

// ApplyPatch overwrites exactly the keys present in the patch.
func (r *Repository) ApplyPatch(ctx context.Context, id int64, patch Patch) (*Lead, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.CallID != nil {
		set("call_id", *patch.CallID)
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Phone != nil {
		set("phone", *patch.Phone)
	}
	if patch.CaseType != nil {
		set("case_type", *patch.CaseType)
	}
	if patch.Urgency != nil {
		set("urgency", *patch.Urgency)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.AttorneyID != nil {
		set("attorney_id", *patch.AttorneyID)
	}
	if patch.Summary != nil {
		set("summary", *patch.Summary)
	}
	if patch.Transcript != nil {
		set("transcript", *patch.Transcript)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE leads SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), leadColumns,
	)

	lead, err := scanLead(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(leadNotFoundMsg)
	}
	return lead, err
}

// AssignAttorney sets the attorney and stamps last_contacted_at.
func (r *Repository) AssignAttorney(ctx context.Context, id, attorneyID int64) (*Lead, error) {
	query := `
		UPDATE leads
		SET attorney_id = $2, last_contacted_at = now(), updated_at = now()
		WHERE id = $1
		RETURNING ` + leadColumns

	lead, err := scanLead(r.db.QueryRow(ctx, query, id, attorneyID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(leadNotFoundMsg)
	}
	return lead, err
}

// NextID allocates the next lead id from the named counter.
func (r *Repository) NextID(ctx context.Context) (int64, error) {
	return counter.NewAllocator(r.db).NextID(ctx, counter.LeadCounter)
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID,
		&lead.CallID,
		&lead.Name,
		&lead.Phone,
		&lead.CaseType,
		&lead.Urgency,
		&lead.Status,
		&lead.AttorneyID,
		&lead.Summary,
		&lead.Transcript,
		&lead.CreatedAt,
		&lead.UpdatedAt,
		&lead.LastContactedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan lead: %w", err)
	}
	return &lead, nil
}
