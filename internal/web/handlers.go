package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/OrderSheet/internal/core"
	"github.com/JonMunkholm/OrderSheet/internal/logging"
	"github.com/JonMunkholm/OrderSheet/internal/web/views"
)

// multipartMemory is how much of a multipart form is kept in memory before
// spilling to temporary files.
const multipartMemory = 32 << 20

// dashboardBuilds is how many recent builds the dashboard lists.
const dashboardBuilds = 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":  "ok",
		"history": s.service.HistoryEnabled(),
	})
}

// handleDashboard renders the upload form and the recent builds.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := views.DashboardData{
		HistoryEnabled: s.service.HistoryEnabled(),
		Status:         s.service.Status(),
		MaxFileSize:    s.cfg.Build.MaxFileSize,
	}
	if data.HistoryEnabled {
		builds, err := s.service.History(r.Context(), dashboardBuilds)
		if err != nil {
			// The form still works without the list.
			logging.FromContext(r.Context()).Warn("load build history", "error", err)
		}
		data.Builds = builds
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := views.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "error", err)
	}
}

// handleInspect lists the sheets and header columns of one uploaded file so
// the UI can offer sheet and identifier pickers.
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		s.respondError(w, r, err)
		return
	}
	src, err := s.readSource(r, "file", "", "")
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sheets, err := s.service.Inspect(r.Context(), src)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"file": src.Name, "sheets": sheets})
}

// handleBuild runs a build and streams the result back as an attachment.
func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		s.respondError(w, r, err)
		return
	}

	format, ok := core.ParseOutputFormat(r.FormValue("format"))
	if !ok {
		respondErrorJSON(w, core.UserMessage{
			Message: "Unknown output format",
			Action:  "Choose xlsx or csv",
			Code:    "FILE002",
		}, http.StatusBadRequest)
		return
	}

	orders, err := s.readSource(r, "order_file", "order_sheet", "order_id")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("order list: %w", err))
		return
	}
	catalog, err := s.readSource(r, "catalog_file", "catalog_sheet", "catalog_id")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("catalog: %w", err))
		return
	}

	ctx := withClient(r.Context(), r)
	res, err := s.service.Build(ctx, core.BuildRequest{Orders: orders, Catalog: catalog, Format: format})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	h := w.Header()
	h.Set("Content-Type", res.Format.ContentType())
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.FileName}))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	h.Set("X-Build-Id", res.ID)
	h.Set("X-Rows-Out", strconv.Itoa(res.Stats.Output))
	h.Set("X-Rows-Removed", strconv.Itoa(res.Stats.Removed))
	h.Set("X-Missing-Images", strconv.Itoa(res.Render.MissingImages))
	if _, err := w.Write(res.Data); err != nil {
		logging.FromContext(r.Context()).Warn("write build result", "build_id", res.ID, "error", err)
	}
}

// handleHistory returns recent builds, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", core.DefaultHistoryLimit)

	builds, err := s.service.History(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"builds": builds})
}

// handleStatus reports build slot usage.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Status())
}

// parseForm caps the body at files uploads of the configured size and
// parses the multipart form.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	limit := files*s.cfg.Build.MaxFileSize + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: request exceeds %d bytes", core.ErrFileTooLarge, tooLarge.Limit)
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return core.ErrNoFile
		}
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// readSource reads one uploaded file and its optional sheet and identifier
// form fields.
func (s *Server) readSource(r *http.Request, fileField, sheetField, idField string) (core.Source, error) {
	file, header, err := r.FormFile(fileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return core.Source{}, core.ErrNoFile
		}
		return core.Source{}, fmt.Errorf("read %s: %w", fileField, err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.Build.MaxFileSize+1))
	if err != nil {
		return core.Source{}, fmt.Errorf("read %s: %w", header.Filename, err)
	}

	src := core.Source{Name: header.Filename, Data: data}
	if sheetField != "" {
		src.Sheet = r.FormValue(sheetField)
	}
	if idField != "" {
		src.IDColumn = r.FormValue(idField)
	}
	return src, nil
}

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}
