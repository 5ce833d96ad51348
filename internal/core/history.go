package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// DefaultHistoryLimit bounds List when the caller passes no limit.
const DefaultHistoryLimit = 50

const maxHistoryLimit = 500

const createBuildsTable = `
CREATE TABLE IF NOT EXISTS order_builds (
	id                uuid PRIMARY KEY,
	order_file        text NOT NULL,
	catalog_file      text NOT NULL,
	order_id_column   text NOT NULL,
	catalog_id_column text NOT NULL,
	rows_ordered      integer NOT NULL,
	rows_catalog      integer NOT NULL,
	rows_joined       integer NOT NULL,
	rows_removed      integer NOT NULL,
	rows_out          integer NOT NULL,
	format            text NOT NULL,
	ip_address        text,
	user_agent        text,
	created_at        timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS order_builds_created_at_idx ON order_builds (created_at DESC);
`

const insertBuild = `
INSERT INTO order_builds (
	id, order_file, catalog_file, order_id_column, catalog_id_column,
	rows_ordered, rows_catalog, rows_joined, rows_removed, rows_out,
	format, ip_address, user_agent, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`

const listBuilds = `
SELECT id, order_file, catalog_file, order_id_column, catalog_id_column,
	rows_ordered, rows_catalog, rows_joined, rows_removed, rows_out,
	format, ip_address, user_agent, created_at
FROM order_builds
ORDER BY created_at DESC
LIMIT $1`

// History stores build records in PostgreSQL.
type History struct {
	db DBTX
}

// NewHistory returns a store backed by db. Call EnsureSchema once at
// startup.
func NewHistory(db DBTX) *History {
	return &History{db: db}
}

// EnsureSchema creates the order_builds table if it does not exist.
func (h *History) EnsureSchema(ctx context.Context) error {
	if _, err := h.db.Exec(ctx, createBuildsTable); err != nil {
		return fmt.Errorf("create order_builds: %w", err)
	}
	return nil
}

// Record inserts rec. A missing ID or timestamp is filled in.
func (h *History) Record(ctx context.Context, rec BuildRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err := h.db.Exec(ctx, insertBuild,
		toPgUUID(rec.ID),
		rec.OrderFile,
		rec.CatalogFile,
		rec.OrderIDColumn,
		rec.CatalogIDColumn,
		rec.RowsOrdered,
		rec.RowsCatalog,
		rec.RowsJoined,
		rec.RowsRemoved,
		rec.RowsOut,
		string(rec.Format),
		toPgText(rec.IPAddress),
		toPgText(rec.UserAgent),
		pgtype.Timestamptz{Time: rec.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert build %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit records, newest first.
func (h *History) List(ctx context.Context, limit int) ([]BuildRecord, error) {
	limit = clampLimit(limit)

	rows, err := h.db.Query(ctx, listBuilds, limit)
	if err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	defer rows.Close()

	records := make([]BuildRecord, 0)
	for rows.Next() {
		rec, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list builds: %w", err)
	}
	return records, nil
}

func scanBuild(rows pgx.Rows) (BuildRecord, error) {
	var (
		rec       BuildRecord
		id        pgtype.UUID
		format    string
		ip, ua    pgtype.Text
		createdAt pgtype.Timestamptz
	)
	err := rows.Scan(
		&id,
		&rec.OrderFile,
		&rec.CatalogFile,
		&rec.OrderIDColumn,
		&rec.CatalogIDColumn,
		&rec.RowsOrdered,
		&rec.RowsCatalog,
		&rec.RowsJoined,
		&rec.RowsRemoved,
		&rec.RowsOut,
		&format,
		&ip,
		&ua,
		&createdAt,
	)
	if err != nil {
		return BuildRecord{}, fmt.Errorf("scan build: %w", err)
	}
	rec.ID = uuidToString(id)
	rec.Format = OutputFormat(format)
	rec.IPAddress = ip.String
	rec.UserAgent = ua.String
	rec.CreatedAt = createdAt.Time
	return rec, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgUUID(s string) pgtype.UUID {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

func uuidToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
