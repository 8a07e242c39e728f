// Package view renders the HTML pages of the web interface.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskdesk/taskdesk/internal/core/domain"
)

//go:embed templates/*.html
var templatesFS embed.FS

const layoutFile = "templates/layout.html"

// Flash kinds, matching the alert styles of the layout.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashWarning = "warning"
	FlashDanger  = "danger"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Kind    string
	Message string
}

// Page is the data handed to every template.
type Page struct {
	Title     string
	Username  string
	Flashes   []Flash
	CSRFToken string
	Year      int
	// Errors holds field messages of a rejected form.
	Errors map[string]string
	Data   any
}

// ErrorData is the Data of the "error" page.
type ErrorData struct {
	Status  int
	Message string
}

// Renderer implements echo.Renderer with one template set per page, each
// sharing the common layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates. currency prefixes money values.
func NewRenderer(currency string) (*Renderer, error) {
	funcs := template.FuncMap{
		"date":     domain.FormatDate,
		"datePtr":  formatDatePtr,
		"money":    func(v float64) string { return fmt.Sprintf("%s%.2f", currency, v) },
		"markdown": RenderMarkdown,
		"clock":    func(t time.Time) string { return t.Local().Format("02/01/2006 15:04") },
		"field":    fieldError,
	}

	base, err := template.New("layout").Funcs(funcs).ParseFS(templatesFS, layoutFile)
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files))}
	for _, f := range files {
		if f == layoutFile {
			continue
		}
		t, err := template.Must(base.Clone()).ParseFS(templatesFS, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

// Render executes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return domain.FormatDate(*t)
}

func fieldError(errs map[string]string, name string) string {
	return errs[name]
}
