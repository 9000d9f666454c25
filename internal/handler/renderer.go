package handler

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"sort"
	"strings"
	"sync"
)

// Page template names.
const (
	PageIndex           = "index"
	PageTrailMaps       = "trailmaps"
	PageResortTrailMaps = "resort_trailmaps"
)

// Renderer manages template parsing and rendering with isolated template sets.
// Every page shares one layout.
//
// Templates are organized as:
//   - layouts/base.html - the document shell, defines "base"
//   - components/*.html - reusable components (header, footer, search)
//   - pages/*.html - one file per page, each defines "content"
//
// Each page gets its own clone of the layout so the "content" definitions
// never collide.
type Renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
	isDev     bool
	mu        sync.RWMutex

	fsys fs.FS
}

// RendererConfig holds configuration for the renderer.
type RendererConfig struct {
	// FS holds the template tree. Usually web.Templates(), or os.DirFS of
	// the source directory when editing templates.
	FS     fs.FS
	Logger *slog.Logger
	// IsDev re-parses the templates on every render.
	IsDev bool
}

// NewRenderer parses every template. A parse error fails construction so a
// broken template never reaches a running server.
func NewRenderer(cfg RendererConfig) (*Renderer, error) {
	if cfg.FS == nil {
		return nil, fmt.Errorf("renderer: no template filesystem")
	}
	r := &Renderer{
		templates: make(map[string]*template.Template),
		logger:    cfg.Logger,
		isDev:     cfg.IsDev,
		fsys:      cfg.FS,
	}

	if err := r.loadTemplates(); err != nil {
		return nil, err
	}

	return r, nil
}

func (r *Renderer) loadTemplates() error {
	componentFiles, err := fs.Glob(r.fsys, "components/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob components: %w", err)
	}

	baseTmpl, err := template.New("base").Funcs(TemplateFuncs()).ParseFS(r.fsys, "layouts/base.html")
	if err != nil {
		return fmt.Errorf("failed to parse base layout: %w", err)
	}

	if len(componentFiles) > 0 {
		baseTmpl, err = baseTmpl.ParseFS(r.fsys, componentFiles...)
		if err != nil {
			return fmt.Errorf("failed to parse components into base layout: %w", err)
		}
	}

	pages, err := fs.Glob(r.fsys, "pages/*.html")
	if err != nil {
		return fmt.Errorf("failed to glob pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		pageTmpl, err := baseTmpl.Clone()
		if err != nil {
			return fmt.Errorf("failed to clone base template for %s: %w", page, err)
		}

		pageTmpl, err = pageTmpl.ParseFS(r.fsys, page)
		if err != nil {
			return fmt.Errorf("failed to parse page %s: %w", page, err)
		}

		// Store as "index", "trailmaps", etc.
		name := strings.TrimSuffix(path.Base(page), path.Ext(page))
		templates[name] = pageTmpl
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()

	return nil
}

// Reload re-parses all templates. Useful in development mode.
func (r *Renderer) Reload() error {
	return r.loadTemplates()
}

// Execute renders the named page into w.
func (r *Renderer) Execute(w io.Writer, name string, data interface{}) error {
	if r.isDev {
		if err := r.Reload(); err != nil {
			return fmt.Errorf("template reload failed: %w", err)
		}
	}

	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	return tmpl.ExecuteTemplate(w, "base", data)
}

// Render renders the named page and returns the document.
func (r *Renderer) Render(name string, data interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderHTTP renders a page to an HTTP response. The page is rendered to a
// buffer first so a failing template yields a clean 500 instead of half a
// document.
func (r *Renderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	r.RenderHTTPStatus(w, http.StatusOK, name, data)
}

// RenderHTTPStatus is RenderHTTP with an explicit status code.
func (r *Renderer) RenderHTTPStatus(w http.ResponseWriter, status int, name string, data interface{}) {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, data); err != nil {
		r.logger.Error("template execution failed", "name", name, "error", err)
		http.Error(w, "Template execution failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// ListTemplates returns a list of all loaded template names.
// Useful for debugging.
func (r *Renderer) ListTemplates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
