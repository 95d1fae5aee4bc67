package journal

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

// Entry is one settled webhook trigger.
type Entry struct {
	ID          string    `json:"id"`
	Endpoint    string    `json:"endpoint"`
	Origin      string    `json:"origin"`
	TriggeredBy string    `json:"triggered_by"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	Total       int       `json:"total"`
	Present     int       `json:"present"`
	Absent      int       `json:"absent"`
	Late        int       `json:"late"`
	DurationMS  int64     `json:"duration_ms"`
	OccurredAt  time.Time `json:"occurred_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// Writer stores entries.
type Writer interface {
	Insert(ctx context.Context, e Entry) error
}

// Reader lists stored entries, newest first.
type Reader interface {
	List(ctx context.Context, outcome string, limit, offset int) ([]Entry, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS sync_journal (
	id           UUID PRIMARY KEY,
	endpoint     TEXT NOT NULL,
	origin       TEXT NOT NULL DEFAULT '',
	triggered_by TEXT NOT NULL DEFAULT '',
	outcome      TEXT NOT NULL,
	error        TEXT NOT NULL DEFAULT '',
	total        INTEGER NOT NULL DEFAULT 0,
	present      INTEGER NOT NULL DEFAULT 0,
	absent       INTEGER NOT NULL DEFAULT 0,
	late         INTEGER NOT NULL DEFAULT 0,
	duration_ms  BIGINT NOT NULL DEFAULT 0,
	occurred_at  TIMESTAMPTZ NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sync_journal_occurred ON sync_journal (occurred_at DESC);
`

// Repository persists the sync journal in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the journal table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Insert writes an entry. Replayed entries with a known id are ignored.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return errors.New("entry id required")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sync_journal (id, endpoint, origin, triggered_by, outcome, error, total, present, absent, late, duration_ms, occurred_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO NOTHING
	`, e.ID, e.Endpoint, e.Origin, e.TriggeredBy, e.Outcome, e.Error, e.Total, e.Present, e.Absent, e.Late, e.DurationMS, e.OccurredAt)
	return err
}

// List returns entries, optionally filtered by outcome.
func (r *Repository) List(ctx context.Context, outcome string, limit, offset int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT id, endpoint, origin, triggered_by, outcome, error, total, present, absent, late, duration_ms, occurred_at, created_at FROM sync_journal`
	args := []any{}
	if outcome != "" {
		query += " WHERE outcome = $1"
		args = append(args, outcome)
	}
	args = append(args, limit, offset)
	query += " ORDER BY occurred_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Endpoint, &e.Origin, &e.TriggeredBy, &e.Outcome, &e.Error,
			&e.Total, &e.Present, &e.Absent, &e.Late, &e.DurationMS, &e.OccurredAt, &e.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
