package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"pefitness/internal/adapters/http/middleware"
	accountDomain "pefitness/internal/domain/account"
)

var staffRoles = []string{accountDomain.RoleAdmin, accountDomain.RoleTeacher}

// maxBodyBytes bounds form and JSON request bodies.
const maxBodyBytes = 64 << 10

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts completion text to HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// pageSet holds one parsed template per page, each combined with the layout.
type pageSet struct {
	pages map[string]*template.Template
}

var templateFuncs = template.FuncMap{
	"renderMarkdown": renderMarkdown,
	"add":            func(a, b int) int { return a + b },
	"num":            formatNumber,
}

func parsePages(fsys fs.FS) (*pageSet, error) {
	names, err := fs.Glob(fsys, "templates/*.html")
	if err != nil {
		return nil, err
	}
	ps := &pageSet{pages: make(map[string]*template.Template)}
	for _, name := range names {
		page := strings.TrimPrefix(name, "templates/")
		if page == "layout.html" {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(fsys, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		ps.pages[page] = tpl
	}
	return ps, nil
}

// view is the data every page receives.
type view struct {
	Title     string
	SignedIn  bool
	Staff     middleware.Session
	CSRFField template.HTML
	Page      any
}

// render executes a page into a buffer first so a template failure never
// produces a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	tpl, ok := s.pages.pages[page]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", page))
		return
	}
	sess, signedIn := middleware.GetSessionFromContext(r.Context())
	v := view{
		Title:     title,
		SignedIn:  signedIn,
		Staff:     sess,
		CSRFField: csrf.TemplateField(r),
		Page:      data,
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, v); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "home.html", "體育科", homeContent)
}
