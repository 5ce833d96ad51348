package core

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/OrderSheet/internal/config"
	"github.com/JonMunkholm/OrderSheet/internal/logging"
	"github.com/JonMunkholm/OrderSheet/internal/order"
	"github.com/JonMunkholm/OrderSheet/internal/sheet"
	"github.com/JonMunkholm/OrderSheet/internal/table"
)

// DefaultSheetName names the worksheet of rendered workbooks.
const DefaultSheetName = "Order list"

// Options configure a Service.
type Options struct {
	Workflow order.Workflow
	Layout   sheet.Layout
	Images   sheet.ImageSource // nil renders without pictures

	IDColumn     string // identifier header used when a Source names none
	OrderSheet   string
	CatalogSheet string
	CSVEncoding  string

	MaxFileSize   int64
	Timeout       time.Duration
	MaxConcurrent int
	MaxWait       time.Duration
}

// DefaultOptions returns the built-in workflow and layout with no limits
// beyond the limiter defaults.
func DefaultOptions() Options {
	return Options{
		Workflow: order.DefaultWorkflow(),
		Layout: sheet.Layout{
			Sheet:        DefaultSheetName,
			ImageColumn:  order.ColImage,
			KeyColumn:    order.ColItemCode,
			InputColumns: []string{order.ColOrder, order.ColNoteForStock},
		},
		IDColumn: order.DefaultIDColumn,
	}
}

// OptionsFrom combines the environment configuration with an optional
// workflow profile. Profile fields left empty keep the defaults.
func OptionsFrom(cfg config.BuildConfig, profile *config.Profile) Options {
	opts := DefaultOptions()
	opts.CSVEncoding = cfg.CSVEncoding
	opts.MaxFileSize = cfg.MaxFileSize
	opts.Timeout = cfg.Timeout
	opts.MaxConcurrent = cfg.MaxConcurrent
	opts.MaxWait = cfg.MaxWaitTime

	if profile == nil {
		return opts
	}
	if profile.IDColumn != "" {
		opts.IDColumn = profile.IDColumn
	}
	opts.OrderSheet = profile.OrderSheet
	opts.CatalogSheet = profile.CatalogSheet
	if m := profile.TranslationMap(); m != nil {
		opts.Workflow.Translations = m
	}
	if len(profile.DisplayColumns) > 0 {
		opts.Workflow.DisplayColumns = profile.DisplayColumns
	}
	if len(profile.EmptyColumns) > 0 {
		opts.Workflow.EmptyColumns = profile.EmptyColumns
	}
	if len(profile.InputColumns) > 0 {
		opts.Layout.InputColumns = profile.InputColumns
	}
	if profile.SheetName != "" {
		opts.Layout.Sheet = profile.SheetName
	}
	return opts
}

// Service runs order-list builds.
type Service struct {
	opts     Options
	history  HistoryStore
	limiter  *BuildLimiter
	renderer *sheet.Renderer
}

// NewService creates a service. history may be nil, which disables the
// build history.
func NewService(opts Options, history HistoryStore) *Service {
	if opts.IDColumn == "" {
		opts.IDColumn = order.DefaultIDColumn
	}
	return &Service{
		opts:     opts,
		history:  history,
		limiter:  NewBuildLimiter(opts.MaxConcurrent, opts.MaxWait),
		renderer: sheet.NewRenderer(opts.Layout, opts.Images),
	}
}

// Inspect lists the worksheets of src with their header columns.
func (s *Service) Inspect(ctx context.Context, src Source) ([]sheet.SheetInfo, error) {
	if err := s.checkSource(src); err != nil {
		return nil, err
	}
	sheets, err := sheet.ListSheets(bytes.NewReader(src.Data), src.Name, sheet.Options{Encoding: s.opts.CSVEncoding})
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", src.Name, err)
	}
	logging.FromContext(ctx).Debug("inspected file", "file", src.Name, "sheets", len(sheets))
	return sheets, nil
}

// Build produces the order list for req. It waits for a free build slot and
// gives up when ctx ends or the configured timeout passes.
func (s *Service) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if req.Format == "" {
		req.Format = OutputXLSX
	}
	if err := s.checkSource(req.Orders); err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	if err := s.checkSource(req.Catalog); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	if !s.limiter.TryAcquire() {
		logging.FromContext(ctx).Info("waiting for a build slot", "active", s.limiter.ActiveCount())
		if err := s.limiter.Acquire(ctx); err != nil {
			return nil, err
		}
	}
	defer s.limiter.Release()

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	id := uuid.NewString()
	log := logging.WithFields(ctx, "build_id", id)
	log.Info("build started",
		"order_file", req.Orders.Name,
		"catalog_file", req.Catalog.Name,
		"format", req.Format,
	)

	orderID := s.idColumn(req.Orders)
	catalogID := s.idColumn(req.Catalog)

	orders, err := s.readTable(ctx, req.Orders, s.opts.OrderSheet, orderID)
	if err != nil {
		return nil, fmt.Errorf("order list: %w", err)
	}
	catalog, err := s.readTable(ctx, req.Catalog, s.opts.CatalogSheet, catalogID)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	out, stats, err := s.opts.Workflow.Build(orders, catalog)
	if err != nil {
		log.Warn("build failed", "error", err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &BuildResult{
		ID:       id,
		FileName: outputName(req.Orders.Name, req.Format),
		Format:   req.Format,
		Stats:    stats,
	}

	var buf bytes.Buffer
	switch req.Format {
	case OutputCSV:
		err = sheet.WriteCSV(&buf, out)
		result.Render = sheet.RenderStats{Rows: out.Len()}
	default:
		result.Render, err = s.renderer.Write(&buf, out)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", req.Format, err)
	}
	result.Data = buf.Bytes()
	result.Duration = time.Since(start)

	log.Info("build completed",
		"rows_out", stats.Output,
		"rows_removed", stats.Removed,
		"images", result.Render.Images,
		"missing_images", result.Render.MissingImages,
		"bytes", len(result.Data),
		"duration", result.Duration,
	)

	s.record(ctx, req, result, orderID, catalogID)
	return result, nil
}

// History returns the newest builds first.
func (s *Service) History(ctx context.Context, limit int) ([]BuildRecord, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.List(ctx, limit)
}

// HistoryEnabled reports whether builds are recorded.
func (s *Service) HistoryEnabled() bool {
	return s.history != nil
}

// Status reports the build limiter state.
func (s *Service) Status() LimiterStatus {
	return s.limiter.Status()
}

// WaitForBuilds blocks until running builds finish or ctx ends.
func (s *Service) WaitForBuilds(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) checkSource(src Source) error {
	if len(src.Data) == 0 {
		return ErrNoFile
	}
	if s.opts.MaxFileSize > 0 && int64(len(src.Data)) > s.opts.MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, src.Name, len(src.Data), s.opts.MaxFileSize)
	}
	if sheet.DetectFormat(src.Name) == sheet.FormatUnknown {
		return fmt.Errorf("%w: %s", sheet.ErrUnsupportedFormat, src.Name)
	}
	return nil
}

func (s *Service) idColumn(src Source) string {
	if id := strings.TrimSpace(src.IDColumn); id != "" {
		return id
	}
	return s.opts.IDColumn
}

func (s *Service) readTable(ctx context.Context, src Source, defaultSheet, idColumn string) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sheetName := src.Sheet
	if sheetName == "" {
		sheetName = defaultSheet
	}
	rng, err := sheet.Read(bytes.NewReader(src.Data), src.Name, sheet.Options{
		Sheet:    sheetName,
		Encoding: s.opts.CSVEncoding,
	})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Name, err)
	}
	if len(rng.Header) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, src.Name)
	}
	return rng.Table(idColumn)
}

// record writes the history row. A failing store is logged and does not
// fail the build.
func (s *Service) record(ctx context.Context, req BuildRequest, res *BuildResult, orderID, catalogID string) {
	if s.history == nil {
		return
	}
	ip, ua := ClientFromContext(ctx)
	rec := BuildRecord{
		ID:              res.ID,
		OrderFile:       req.Orders.Name,
		CatalogFile:     req.Catalog.Name,
		OrderIDColumn:   orderID,
		CatalogIDColumn: catalogID,
		RowsOrdered:     res.Stats.OrderRows,
		RowsCatalog:     res.Stats.CatalogRows,
		RowsJoined:      res.Stats.Joined,
		RowsRemoved:     res.Stats.Removed,
		RowsOut:         res.Stats.Output,
		Format:          res.Format,
		IPAddress:       ip,
		UserAgent:       ua,
		CreatedAt:       time.Now(),
	}
	if err := s.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		logging.FromContext(ctx).Error("record build failed", "build_id", res.ID, "error", err)
	}
}

// outputName derives the download name from the order file,
// e.g. "orders.xlsx" becomes "orders-order-list.xlsx".
func outputName(orderFile string, format OutputFormat) string {
	base := filepath.Base(orderFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	if base == "" || base == "." {
		base = "order"
	}
	return base + "-order-list." + string(format)
}
