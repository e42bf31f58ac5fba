package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/courtbot/internal/court"
	"github.com/hpungsan/courtbot/internal/errors"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
}

// GuildPageData is the template data for the guild overview page.
type GuildPageData struct {
	PageData
	State    *court.GuildState
	Lawsuits []LawsuitView
	OpenOnly bool
}

// LawsuitView is a lawsuit with its free-text fields rendered from markdown.
type LawsuitView struct {
	court.Lawsuit
	ReasonHTML  template.HTML
	VerdictHTML template.HTML
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Code       errors.ErrorCode
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	logger    *slog.Logger
}

// NewRenderer parses the page templates from templateFS.
func NewRenderer(templateFS fs.FS, version string, logger *slog.Logger) *Renderer {
	funcMap := template.FuncMap{
		"mention": func(id *court.Snowflake) string {
			if id == nil {
				return "TBD"
			}
			return id.String()
		},
	}

	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"guild": "guild.html",
		"error": "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{templates: templates, version: version, logger: logger}
}

// renderPage renders a named page template with the given status.
func (r *Renderer) renderPage(w http.ResponseWriter, status int, name string, data any) {
	t, ok := r.templates[name]
	if !ok {
		r.logger.Error("template not found", "template", name)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// renderError writes err as JSON or as an error page depending on the Accept header.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	var courtErr *errors.CourtError
	if !stderrors.As(err, &courtErr) {
		courtErr = errors.NewInternal(err)
	}

	status := httpStatus(courtErr.Code)
	message := courtErr.Message
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		r.logger.Error("dashboard request failed", "path", req.URL.Path, "error", err)
		message = "an internal error occurred"
	}

	if wantsJSON(req) {
		renderJSON(w, status, map[string]any{
			"error": map[string]any{
				"code":    courtErr.Code,
				"message": message,
			},
		})
		return
	}

	r.renderPage(w, status, "error", ErrorPageData{
		PageData:   PageData{Title: http.StatusText(status), Version: r.version},
		StatusCode: status,
		Code:       courtErr.Code,
		Message:    message,
	})
}

// httpStatus maps an error code to its HTTP status.
func httpStatus(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidRequest:
		return http.StatusBadRequest
	case errors.ErrNotFound:
		return http.StatusNotFound
	case errors.ErrConflict:
		return http.StatusConflict
	case errors.ErrPlatform:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderMarkdown converts chat markdown to HTML. goldmark escapes raw HTML by default.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

func lawsuitViews(lawsuits []court.Lawsuit) []LawsuitView {
	views := make([]LawsuitView, 0, len(lawsuits))
	for _, l := range lawsuits {
		v := LawsuitView{Lawsuit: l, ReasonHTML: renderMarkdown(l.Reason)}
		if l.Verdict != nil {
			v.VerdictHTML = renderMarkdown(*l.Verdict)
		}
		views = append(views, v)
	}
	return views
}
