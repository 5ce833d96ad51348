package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/OrderSheet/internal/order"
	"github.com/JonMunkholm/OrderSheet/internal/sheet"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// OutputFormat selects what a build produces.
type OutputFormat string

const (
	OutputXLSX OutputFormat = "xlsx"
	OutputCSV  OutputFormat = "csv"
)

// ParseOutputFormat maps a form value to a format. Empty means xlsx.
func ParseOutputFormat(s string) (OutputFormat, bool) {
	switch OutputFormat(s) {
	case "", OutputXLSX:
		return OutputXLSX, true
	case OutputCSV:
		return OutputCSV, true
	default:
		return "", false
	}
}

// ContentType is the MIME type of the rendered file.
func (f OutputFormat) ContentType() string {
	if f == OutputCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Source is one uploaded spreadsheet.
type Source struct {
	Name     string // original file name; its extension selects the reader
	Data     []byte
	Sheet    string // worksheet to read; empty uses the service default
	IDColumn string // identifier header; empty uses the service default
}

// BuildRequest asks for one order list.
type BuildRequest struct {
	Orders  Source
	Catalog Source
	Format  OutputFormat
}

// BuildResult is a finished build.
type BuildResult struct {
	ID       string
	FileName string
	Format   OutputFormat
	Data     []byte
	Stats    order.Stats
	Render   sheet.RenderStats
	Duration time.Duration
}

// BuildRecord is one row of the build history.
type BuildRecord struct {
	ID              string       `json:"id"`
	OrderFile       string       `json:"order_file"`
	CatalogFile     string       `json:"catalog_file"`
	OrderIDColumn   string       `json:"order_id_column"`
	CatalogIDColumn string       `json:"catalog_id_column"`
	RowsOrdered     int          `json:"rows_ordered"`
	RowsCatalog     int          `json:"rows_catalog"`
	RowsJoined      int          `json:"rows_joined"`
	RowsRemoved     int          `json:"rows_removed"`
	RowsOut         int          `json:"rows_out"`
	Format          OutputFormat `json:"format"`
	IPAddress       string       `json:"ip_address,omitempty"`
	UserAgent       string       `json:"user_agent,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// HistoryStore persists build records.
type HistoryStore interface {
	Record(ctx context.Context, rec BuildRecord) error
	List(ctx context.Context, limit int) ([]BuildRecord, error)
}
