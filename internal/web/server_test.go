package web

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JonMunkholm/OrderSheet/internal/config"
	"github.com/JonMunkholm/OrderSheet/internal/core"
)

const ordersCSV = "Kód;Název;Naskladnění;Objednáno;Dodáno;Stav\n" +
	"A1;Lamp;3;5;2;skladem\n" +
	"B2;Vase;0;0;0;ukončeno\n"

const catalogCSV = "Kód,EAN,Cena,Skladem\n" +
	"A1,859001,99.9,2\n" +
	"B2,859002,45,0\n"

// newTestServer returns a server over a history-less service. mutate may
// adjust the default configuration first.
func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg, err := config.LoadFrom(func(string) (string, bool) { return "", false })
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	cfg.Rate.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}
	svc := core.NewService(core.OptionsFrom(cfg.Build, nil), nil)
	s := NewServer(svc, cfg)
	t.Cleanup(func() { s.Shutdown(t.Context()) })
	return s
}

// multipartBody builds a form from name/filename/content triples for files
// and plain fields.
func multipartBody(t *testing.T, files map[string][2]string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, f := range files {
		part, err := mw.CreateFormFile(field, f[0])
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(f[1]))
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("error body is not JSON: %v", err)
	}
	return resp
}

func TestHandleBuild(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartBody(t, map[string][2]string{
		"order_file":   {"orders.csv", ordersCSV},
		"catalog_file": {"catalog.csv", catalogCSV},
	}, map[string]string{"format": "csv"})

	req := httptest.NewRequest(http.MethodPost, "/api/build", body)
	req.Header.Set("Content-Type", ct)
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/csv") {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "orders-order-list.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Header().Get("X-Rows-Out") != "1" || rec.Header().Get("X-Rows-Removed") != "1" {
		t.Errorf("row headers = %q, %q", rec.Header().Get("X-Rows-Out"), rec.Header().Get("X-Rows-Removed"))
	}
	if rec.Header().Get("X-Build-Id") == "" {
		t.Error("missing X-Build-Id")
	}
	if !strings.Contains(rec.Body.String(), "Lamp") || strings.Contains(rec.Body.String(), "Vase") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
}

func TestHandleBuildErrors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string][2]string
		fields   map[string]string
		status   int
		wantCode string
	}{
		{
			name:     "missing catalog",
			files:    map[string][2]string{"order_file": {"orders.csv", ordersCSV}},
			status:   http.StatusBadRequest,
			wantCode: "FILE004",
		},
		{
			name: "wrong identifier",
			files: map[string][2]string{
				"order_file":   {"orders.csv", ordersCSV},
				"catalog_file": {"catalog.csv", catalogCSV},
			},
			fields:   map[string]string{"order_id": "Code"},
			status:   http.StatusUnprocessableEntity,
			wantCode: "COL001",
		},
		{
			name: "unsupported file",
			files: map[string][2]string{
				"order_file":   {"orders.ods", ordersCSV},
				"catalog_file": {"catalog.csv", catalogCSV},
			},
			status:   http.StatusBadRequest,
			wantCode: "FILE002",
		},
		{
			name: "unknown format",
			files: map[string][2]string{
				"order_file":   {"orders.csv", ordersCSV},
				"catalog_file": {"catalog.csv", catalogCSV},
			},
			fields:   map[string]string{"format": "pdf"},
			status:   http.StatusBadRequest,
			wantCode: "FILE002",
		},
	}

	s := newTestServer(t, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.files, tt.fields)
			req := httptest.NewRequest(http.MethodPost, "/api/build", body)
			req.Header.Set("Content-Type", ct)
			rec := do(s, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestHandleBuildErrorFromDashboardForm(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartBody(t, map[string][2]string{"order_file": {"orders.csv", ordersCSV}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/build", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	rec := do(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", got)
	}
	html := rec.Body.String()
	if !strings.Contains(html, `role="alert"`) || !strings.Contains(html, "Code: FILE004") {
		t.Errorf("body = %s", html)
	}
}

func TestWantsJSON(t *testing.T) {
	tests := []struct {
		accept string
		want   bool
	}{
		{"", true},
		{"*/*", true},
		{"application/json", true},
		{"text/html,application/json", true},
		{"text/html,application/xhtml+xml,*/*;q=0.8", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/api/build", nil)
		if tt.accept != "" {
			req.Header.Set("Accept", tt.accept)
		}
		if got := wantsJSON(req); got != tt.want {
			t.Errorf("wantsJSON(Accept %q) = %v, want %v", tt.accept, got, tt.want)
		}
	}
}

func TestHandleBuildTooLarge(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) { c.Build.MaxFileSize = 64 })

	body, ct := multipartBody(t, map[string][2]string{
		"order_file":   {"orders.csv", ordersCSV},
		"catalog_file": {"catalog.csv", catalogCSV},
	}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/build", body)
	req.Header.Set("Content-Type", ct)
	rec := do(s, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "FILE001" {
		t.Errorf("code = %s, want FILE001", got)
	}
}

func TestHandleInspect(t *testing.T) {
	s := newTestServer(t, nil)
	body, ct := multipartBody(t, map[string][2]string{"file": {"orders.csv", ordersCSV}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/inspect", body)
	req.Header.Set("Content-Type", ct)
	rec := do(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		File   string `json:"file"`
		Sheets []struct {
			Name    string   `json:"name"`
			Columns []string `json:"columns"`
			Rows    int      `json:"rows"`
		} `json:"sheets"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Sheets) != 1 || resp.Sheets[0].Name != "orders" || resp.Sheets[0].Rows != 2 {
		t.Fatalf("sheets = %+v", resp.Sheets)
	}
	if resp.Sheets[0].Columns[0] != "Kód" {
		t.Errorf("columns = %v", resp.Sheets[0].Columns)
	}
}

func TestHandleHistoryDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/history?limit=5", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "BLD004" {
		t.Errorf("code = %s, want BLD004", got)
	}
}

func TestHandleStatusAndHealth(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var st core.LimiterStatus
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.MaxConcurrent != 4 || st.Available != 4 {
		t.Errorf("status = %+v", st)
	}

	rec = do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("healthz = %d %s", rec.Code, rec.Body.String())
	}
}

func TestHandleDashboard(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(s, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/api/build"`) {
		t.Error("dashboard should contain the build form")
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Rate.Enabled = true
		c.Rate.RequestsPerMinute = 2
	})

	for i := 0; i < 2; i++ {
		if rec := do(s, httptest.NewRequest(http.MethodGet, "/api/status", nil)); rec.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, rec.Code)
		}
	}
	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	if got := decodeError(t, rec).Code; got != "RATE001" {
		t.Errorf("code = %s, want RATE001", got)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	s := newTestServer(t, func(c *config.Config) {
		c.Security.RequireAPIKey = true
		c.Security.APIKeys = []string{"secret"}
	})

	if rec := do(s, httptest.NewRequest(http.MethodGet, "/api/status", nil)); rec.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	req.Header.Set("X-API-Key", "secret")
	if rec := do(s, req); rec.Code != http.StatusOK {
		t.Errorf("with key status = %d, want 200", rec.Code)
	}

	if rec := do(s, httptest.NewRequest(http.MethodGet, "/healthz", nil)); rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d, want 200", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := map[string]int{
		"FILE001": http.StatusRequestEntityTooLarge,
		"FILE006": http.StatusBadRequest,
		"VAL001":  http.StatusUnprocessableEntity,
		"BLD002":  http.StatusServiceUnavailable,
		"BLD003":  http.StatusGatewayTimeout,
		"DB004":   http.StatusServiceUnavailable,
		"ERR000":  http.StatusInternalServerError,
	}
	for code, want := range tests {
		if got := statusFor(core.UserMessage{Code: code}); got != want {
			t.Errorf("statusFor(%s) = %d, want %d", code, got, want)
		}
	}
}
