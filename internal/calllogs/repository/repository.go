// Package repository provides database access for call logs.
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

const callLogNotFoundMsg = "call log not found"

// CallLog is one record per attempted call, optionally linked to a lead.
type CallLog struct {
	ID               int64
	CallID           string
	LeadID           *int64
	AgentID          *string
	PhoneNumber      string
	Status           *string
	Direction        *string
	Duration         *int
	RecordingURL     *string
	Summary          *string
	Transcript       *string
	Sentiment        *string
	DisconnectReason *string
	Analysis         map[string]any

	// UI-editable case metadata.
	City          *string
	StateProvince *string
	Email         *string
	Address       *string
	CaseType      *string
	CaseNotes     *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LeadSummary is the lead projection joined onto call logs for display.
type LeadSummary struct {
	Name       string
	CaseType   string
	Urgency    string
	AttorneyID *int64
}

// CallLogWithLead pairs a call log with its owning lead's display fields.
type CallLogWithLead struct {
	CallLog
	Lead *LeadSummary
}

// Patch is a partial update. Nil means the key was absent and is left
// untouched; a non-nil pointer overwrites, including with an empty value.
type Patch struct {
	CallID           *string
	LeadID           *int64
	AgentID          *string
	PhoneNumber      *string
	Status           *string
	Direction        *string
	Duration         *int
	RecordingURL     *string
	Summary          *string
	Transcript       *string
	Sentiment        *string
	DisconnectReason *string
	Analysis         map[string]any

	City          *string
	StateProvince *string
	Email         *string
	Address       *string
	CaseType      *string
	CaseNotes     *string
}

// Store is the call log persistence surface the service layer runs against.
type Store interface {
	List(ctx context.Context) ([]CallLog, error)
	ListWithLead(ctx context.Context) ([]CallLogWithLead, error)
	GetByID(ctx context.Context, id int64) (*CallLog, error)
	FindAllByCallID(ctx context.Context, callID string) ([]CallLog, error)
	FindRecentByLeadID(ctx context.Context, leadID int64, since time.Time) (*CallLog, error)
	FindRecentByAgentAndPhone(ctx context.Context, agentID, digits string, since time.Time) (*CallLog, error)
	ListRecentCallIDs(ctx context.Context, since time.Time) ([]string, error)
	Insert(ctx context.Context, log CallLog) (*CallLog, error)
	ApplyPatch(ctx context.Context, id int64, patch Patch) (*CallLog, error)
	DeleteByIDs(ctx context.Context, ids []int64) error
	NextID(ctx context.Context) (int64, error)
}

// TxStore is a Store that can run a closure inside a transaction.
type TxStore interface {
	Store
	WithCallLock(ctx context.Context, callID string, fn func(Store) error) error
}

// DB is the subset of pgx used here; both *pgxpool.Pool and pgx.Tx satisfy it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository provides database operations for call logs.
type Repository struct {
	pool *pgxpool.Pool
	db   DB
}

// New creates a new call logs repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, db: pool}
}

// WithCallLock runs fn inside a transaction holding an advisory lock on the
// call id. Same locking scheme as the leads repository, so lead and call log
// upserts for one call serialize against each other too.
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

const callLogColumns = `
	id, call_id, lead_id, agent_id, phone_number, status, direction, duration,
	recording_url, summary, transcript, sentiment, disconnect_reason, analysis,
	city, state_province, email, address, case_type, case_notes,
	created_at, updated_at`

// List returns all call logs, newest first.
func (r *Repository) List(ctx context.Context) ([]CallLog, error) {
	query := `SELECT ` + callLogColumns + ` FROM call_logs ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list call logs: %w", err)
	}
	defer rows.Close()

	return collectCallLogs(rows)
}

// ListWithLead returns all call logs joined to their lead's display fields.
func (r *Repository) ListWithLead(ctx context.Context) ([]CallLogWithLead, error) {
	query := `
		SELECT
			c.id, c.call_id, c.lead_id, c.agent_id, c.phone_number, c.status,
			c.direction, c.duration, c.recording_url, c.summary, c.transcript,
			c.sentiment, c.disconnect_reason, c.analysis, c.city,
			c.state_province, c.email, c.address, c.case_type, c.case_notes,
			c.created_at, c.updated_at,
			l.name, l.case_type, l.urgency, l.attorney_id
		FROM call_logs c
		LEFT JOIN leads l ON l.id = c.lead_id
		ORDER BY c.created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list call logs with lead: %w", err)
	}
	defer rows.Close()

	logs := make([]CallLogWithLead, 0)
	for rows.Next() {
		var item CallLogWithLead
		var leadName, leadCaseType, leadUrgency *string
		var leadAttorneyID *int64

		if err := rows.Scan(
			callLogScanTargets(&item.CallLog,
				&leadName, &leadCaseType, &leadUrgency, &leadAttorneyID)...,
		); err != nil {
			return nil, fmt.Errorf("scan call log with lead: %w", err)
		}

		if leadName != nil {
			item.Lead = &LeadSummary{
				Name:       *leadName,
				CaseType:   derefOr(leadCaseType, ""),
				Urgency:    derefOr(leadUrgency, ""),
				AttorneyID: leadAttorneyID,
			}
		}
		logs = append(logs, item)
	}
	return logs, rows.Err()
}

// GetByID fetches a single call log by its integer id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*CallLog, error) {
	query := `SELECT ` + callLogColumns + ` FROM call_logs WHERE id = $1`

	log, err := scanCallLog(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(callLogNotFoundMsg)
	}
	return log, err
}

// FindAllByCallID returns every row for a call id, newest first. More than
// one row means historical duplicates that the reconciler will collapse.
func (r *Repository) FindAllByCallID(ctx context.Context, callID string) ([]CallLog, error) {
	query := `SELECT ` + callLogColumns + ` FROM call_logs WHERE call_id = $1 ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("find call logs by call id: %w", err)
	}
	defer rows.Close()

	return collectCallLogs(rows)
}

// FindRecentByLeadID returns the newest call log for a lead created since the
// given time.
func (r *Repository) FindRecentByLeadID(ctx context.Context, leadID int64, since time.Time) (*CallLog, error) {
	query := `
		SELECT ` + callLogColumns + `
		FROM call_logs
		WHERE lead_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT 1`

	log, err := scanCallLog(r.db.QueryRow(ctx, query, leadID, since))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return log, err
}

// FindRecentByAgentAndPhone returns the newest call log matching agent id and
// phone digits created since the given time.
func (r *Repository) FindRecentByAgentAndPhone(ctx context.Context, agentID, digits string, since time.Time) (*CallLog, error) {
	query := `
		SELECT ` + callLogColumns + `
		FROM call_logs
		WHERE agent_id = $1
		  AND regexp_replace(phone_number, '\D', '', 'g') = $2
		  AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1`

	log, err := scanCallLog(r.db.QueryRow(ctx, query, agentID, digits, since))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return log, err
}

// ListRecentCallIDs returns distinct call ids seen since the given time.
// Used by the periodic duplicate sweep.
func (r *Repository) ListRecentCallIDs(ctx context.Context, since time.Time) ([]string, error) {
	query := `SELECT DISTINCT call_id FROM call_logs WHERE created_at >= $1`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list recent call ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan call id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert persists a new call log. The caller supplies the id from NextID.
func (r *Repository) Insert(ctx context.Context, log CallLog) (*CallLog, error) {
	query := `
		INSERT INTO call_logs (
			id, call_id, lead_id, agent_id, phone_number, status, direction,
			duration, recording_url, summary, transcript, sentiment,
			disconnect_reason, analysis, city, state_province, email, address,
			case_type, case_notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $21
		)
		RETURNING ` + callLogColumns

	now := time.Now()
	return scanCallLog(r.db.QueryRow(ctx, query,
		log.ID, log.CallID, log.LeadID, log.AgentID, log.PhoneNumber,
		log.Status, log.Direction, log.Duration, log.RecordingURL,
		log.Summary, log.Transcript, log.Sentiment, log.DisconnectReason,
		log.Analysis, log.City, log.StateProvince, log.Email, log.Address,
		log.CaseType, log.CaseNotes, now,
	))
}

// ApplyPatch overwrites exactly the keys present in the patch.
func (r *Repository) ApplyPatch(ctx context.Context, id int64, patch Patch) (*CallLog, error) {
	sets := []string{"updated_at = now()"}
	args := []any{}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.CallID != nil {
		set("call_id", *patch.CallID)
	}
	if patch.LeadID != nil {
		set("lead_id", *patch.LeadID)
	}
	if patch.AgentID != nil {
		set("agent_id", *patch.AgentID)
	}
	if patch.PhoneNumber != nil {
		set("phone_number", *patch.PhoneNumber)
	}
	if patch.Status != nil {
		set("status", *patch.Status)
	}
	if patch.Direction != nil {
		set("direction", *patch.Direction)
	}
	if patch.Duration != nil {
		set("duration", *patch.Duration)
	}
	if patch.RecordingURL != nil {
		set("recording_url", *patch.RecordingURL)
	}
	if patch.Summary != nil {
		set("summary", *patch.Summary)
	}
	if patch.Transcript != nil {
		set("transcript", *patch.Transcript)
	}
	if patch.Sentiment != nil {
		set("sentiment", *patch.Sentiment)
	}
	if patch.DisconnectReason != nil {
		set("disconnect_reason", *patch.DisconnectReason)
	}
	if patch.Analysis != nil {
		set("analysis", patch.Analysis)
	}
	if patch.City != nil {
		set("city", *patch.City)
	}
	if patch.StateProvince != nil {
		set("state_province", *patch.StateProvince)
	}
	if patch.Email != nil {
		set("email", *patch.Email)
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if patch.CaseType != nil {
		set("case_type", *patch.CaseType)
	}
	if patch.CaseNotes != nil {
		set("case_notes", *patch.CaseNotes)
	}

	args = append(args, id)
	query := fmt.Sprintf(
		`UPDATE call_logs SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), callLogColumns,
	)

	log, err := scanCallLog(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound(callLogNotFoundMsg)
	}
	return log, err
}

// DeleteByIDs hard-deletes the given rows. Only used for duplicate collapse.
func (r *Repository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM call_logs WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete call logs: %w", err)
	}
	return nil
}

// NextID allocates the next call log id from the named counter.
func (r *Repository) NextID(ctx context.Context) (int64, error) {
	return counter.NewAllocator(r.db).NextID(ctx, counter.CallLogCounter)
}

func collectCallLogs(rows pgx.Rows) ([]CallLog, error) {
	logs := make([]CallLog, 0)
	for rows.Next() {
		var log CallLog
		if err := rows.Scan(callLogScanTargets(&log)...); err != nil {
			return nil, fmt.Errorf("scan call log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanCallLog(row pgx.Row) (*CallLog, error) {
	var log CallLog
	err := row.Scan(callLogScanTargets(&log)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan call log: %w", err)
	}
	return &log, nil
}

func callLogScanTargets(log *CallLog, extra ...any) []any {
	targets := []any{
		&log.ID, &log.CallID, &log.LeadID, &log.AgentID, &log.PhoneNumber,
		&log.Status, &log.Direction, &log.Duration, &log.RecordingURL,
		&log.Summary, &log.Transcript, &log.Sentiment, &log.DisconnectReason,
		&log.Analysis, &log.City, &log.StateProvince, &log.Email,
		&log.Address, &log.CaseType, &log.CaseNotes,
		&log.CreatedAt, &log.UpdatedAt,
	}
	return append(targets, extra...)
}

func derefOr(value *string, fallback string) string {
	if value == nil {
		return fallback
	}
	return *value
}
