// Package views renders the HTML pages as templ components.
package views

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/OrderSheet/internal/core"
)

// DashboardData is what the dashboard shows.
type DashboardData struct {
	Builds         []core.BuildRecord
	HistoryEnabled bool
	Status         core.LimiterStatus
	MaxFileSize    int64
}

const pageStyle = `
body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:60rem;color:#1f2937}
fieldset{border:1px solid #d1d5db;border-radius:.5rem;margin:0 0 1rem;padding:1rem}
label{display:block;margin:.25rem 0}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #e5e7eb;padding:.35rem .5rem;text-align:left}
.alert{background:#fef2f2;border:1px solid #fecaca;border-radius:.5rem;padding:1rem}
.muted{color:#6b7280}
`

// Dashboard renders the build form and the recent builds.
func Dashboard(data DashboardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return render(w,
			func(w io.Writer) { writeHead(w, "Order list") },
			func(w io.Writer) {
				fmt.Fprint(w, `<body><h1>Order list</h1>`)
				fmt.Fprintf(w, `<p class="muted">Build slots free: %d of %d. Files up to %s.</p>`,
					data.Status.Available, data.Status.MaxConcurrent, templ.EscapeString(formatSize(data.MaxFileSize)))
			},
			func(w io.Writer) { writeBuildForm(w) },
			func(w io.Writer) { writeBuilds(w, data) },
			func(w io.Writer) { fmt.Fprint(w, `</body></html>`) },
		)
	})
}

// ErrorAlert renders a user-facing error with its support code.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<div class="alert" role="alert"><strong>%s</strong><p>%s</p><p class="muted">Code: %s</p><p><a href="/">Back to the dashboard</a></p></div>`,
			templ.EscapeString(message), templ.EscapeString(action), templ.EscapeString(code))
		return err
	})
}

// render runs the parts in order and reports the first write error.
func render(w io.Writer, parts ...func(io.Writer)) error {
	ew := &errWriter{w: w}
	for _, p := range parts {
		p(ew)
		if ew.err != nil {
			return ew.err
		}
	}
	return nil
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

func writeHead(w io.Writer, title string) {
	fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title><style>%s</style></head>`,
		templ.EscapeString(title), pageStyle)
}

func writeBuildForm(w io.Writer) {
	fmt.Fprint(w, `<form method="post" action="/api/build" enctype="multipart/form-data">`)
	for _, src := range []struct{ prefix, legend string }{
		{"order", "Order list"},
		{"catalog", "Catalog"},
	} {
		fmt.Fprintf(w, `<fieldset><legend>%s</legend>`, src.legend)
		fmt.Fprintf(w, `<label>File <input type="file" name="%s_file" accept=".xlsx,.csv" required></label>`, src.prefix)
		fmt.Fprintf(w, `<label>Sheet <input type="text" name="%s_sheet" placeholder="first sheet"></label>`, src.prefix)
		fmt.Fprintf(w, `<label>Identifier column <input type="text" name="%s_id" placeholder="Kód"></label>`, src.prefix)
		fmt.Fprint(w, `</fieldset>`)
	}
	fmt.Fprint(w, `<label>Format <select name="format"><option value="xlsx">Excel workbook</option><option value="csv">CSV</option></select></label>`)
	fmt.Fprint(w, `<p><button type="submit">Build order list</button></p></form>`)
}

func writeBuilds(w io.Writer, data DashboardData) {
	fmt.Fprint(w, `<h2>Recent builds</h2>`)
	if !data.HistoryEnabled {
		fmt.Fprint(w, `<p class="muted">Build history is off.</p>`)
		return
	}
	if len(data.Builds) == 0 {
		fmt.Fprint(w, `<p class="muted">No builds yet.</p>`)
		return
	}
	fmt.Fprint(w, `<table><thead><tr><th>When</th><th>Order list</th><th>Catalog</th><th>Rows</th><th>Removed</th><th>Format</th></tr></thead><tbody>`)
	for _, b := range data.Builds {
		fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>%d</td><td>%s</td></tr>`,
			b.CreatedAt.Format("2006-01-02 15:04"),
			templ.EscapeString(b.OrderFile),
			templ.EscapeString(b.CatalogFile),
			b.RowsOut,
			b.RowsRemoved,
			templ.EscapeString(string(b.Format)),
		)
	}
	fmt.Fprint(w, `</tbody></table>`)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d B", n)
	}
}
