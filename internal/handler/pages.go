package handler

import (
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/live"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/storage"
	"github.com/DukeRupert/uphill/internal/theme"
)

// PageData is what every page template receives.
type PageData struct {
	Title       string
	Description string
	CurrentPath string

	// Theme is empty unless the request carried a choice or a hint; the
	// page then follows prefers-color-scheme.
	Theme theme.Theme
	// Live names the live session page the browser should open, if any.
	Live string

	Criteria filter.Criteria
	Cards    template.HTML
	Table    template.HTML
	Count    template.HTML
	Gallery  template.HTML
	Group    domain.ResortGroup
}

// IndexData builds the resort page for criteria.
func IndexData(resorts []domain.Resort, c filter.Criteria, t theme.Theme) PageData {
	list := filter.Resorts(resorts, c)
	return PageData{
		Title:       "Uphill Ski Colorado | Resort Uphill Policies",
		Description: "Uphill access policies of every Colorado ski resort, ranked.",
		CurrentPath: "/",
		Theme:       t,
		Live:        live.PageResorts,
		Criteria:    c,
		Cards:       render.CardsRegion.Fill(render.Cards(list)),
		Table:       render.TableRegion.Fill(render.TableRows(list)),
		Count:       text(render.ResortCount(len(list), len(resorts))),
	}
}

// TrailMapsData builds the trail-map gallery for a search term.
func TrailMapsData(maps []domain.TrailMap, thumbs render.Thumbnails, search string, t theme.Theme) PageData {
	list := filter.TrailMaps(maps, search)
	return PageData{
		Title:       "Colorado Ski Trail Maps | Uphill Ski Colorado",
		Description: "Trail maps for Colorado ski areas.",
		CurrentPath: "/trailmaps",
		Theme:       t,
		Live:        live.PageTrailMaps,
		Criteria:    filter.Criteria{Search: search},
		Gallery:     render.TrailMapGallery(list, thumbs),
		Count:       text(render.TrailMapCount(len(list), len(maps))),
	}
}

// GroupData builds the page listing every map of one ski area.
func GroupData(g domain.ResortGroup, maps []domain.TrailMap, thumbs render.Thumbnails, t theme.Theme) PageData {
	return PageData{
		Title:       g.Name + " Trail Maps | Uphill Ski Colorado",
		Description: g.Description,
		CurrentPath: "/trailmaps/" + g.Slug,
		Theme:       t,
		Group:       g,
		Gallery:     render.TrailMapGallery(maps, thumbs),
		Count:       text(render.ResortMapCount(len(maps))),
	}
}

func text(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

// PageHandler serves the server-rendered pages and the files published to
// storage.
type PageHandler struct {
	store    *catalog.Store
	thumbs   render.Thumbnails
	files    storage.Storage
	renderer *Renderer
	logger   *slog.Logger
	isSecure bool
}

// PageHandlerConfig holds the dependencies of a PageHandler.
type PageHandlerConfig struct {
	Store    *catalog.Store
	Thumbs   render.Thumbnails
	Files    storage.Storage
	Renderer *Renderer
	Logger   *slog.Logger
	IsSecure bool
}

// NewPageHandler creates a PageHandler.
func NewPageHandler(cfg PageHandlerConfig) *PageHandler {
	return &PageHandler{
		store:    cfg.Store,
		thumbs:   cfg.Thumbs,
		files:    cfg.Files,
		renderer: cfg.Renderer,
		logger:   cfg.Logger,
		isSecure: cfg.IsSecure,
	}
}

// RegisterRoutes registers the page routes.
func (h *PageHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", h.Index)
	mux.HandleFunc("GET /trailmaps", h.TrailMaps)
	mux.HandleFunc("GET /trailmaps/{name...}", h.TrailMap)
	mux.HandleFunc("GET /images/{name...}", h.Image)
	mux.HandleFunc("POST /theme", h.ToggleTheme)
}

// Index renders the resort page. Query parameters pre-filter it so the
// page works without JavaScript.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	// Only handle exact root path
	if r.URL.Path != "/" {
		NotFoundResponse(w, r, h.logger)
		return
	}

	c := filter.ParseCriteria(r.URL.Query())
	h.renderer.RenderHTTP(w, PageIndex, IndexData(h.store.Resorts(), c, theme.Explicit(r)))
}

// TrailMaps renders the gallery.
func (h *PageHandler) TrailMaps(w http.ResponseWriter, r *http.Request) {
	search := r.URL.Query().Get("search")
	h.renderer.RenderHTTP(w, PageTrailMaps, TrailMapsData(h.store.TrailMaps(), h.thumbs, search, theme.Explicit(r)))
}

// TrailMap serves /trailmaps/{name}: an area's page when name is a group
// slug (with or without .html), otherwise the published image.
func (h *PageHandler) TrailMap(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if slug := strings.TrimSuffix(name, ".html"); !strings.ContainsAny(slug, "./") {
		g, err := h.store.Group(slug)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		data := GroupData(g, h.store.MapsByResort(slug), h.thumbs, theme.Explicit(r))
		h.renderer.RenderHTTP(w, PageResortTrailMaps, data)
		return
	}

	h.serveFile(w, r, storage.TrailMapKey(name))
}

// Image serves a published site image such as a pass logo.
func (h *PageHandler) Image(w http.ResponseWriter, r *http.Request) {
	h.serveFile(w, r, "images/"+r.PathValue("name"))
}

func (h *PageHandler) serveFile(w http.ResponseWriter, r *http.Request, key string) {
	body, info, err := h.files.Get(r.Context(), key)
	if err != nil {
		if storage.IsNotFound(err) || storage.IsInvalidKey(err) {
			NotFoundResponse(w, r, h.logger)
			return
		}
		InternalErrorResponse(w, r, h.logger, err)
		return
	}
	defer body.Close()

	if info.ETag != "" {
		if r.Header.Get("If-None-Match") == info.ETag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", info.ETag)
	}
	w.Header().Set("Content-Type", storage.DetectContentType(info.ContentType, key))
	w.Header().Set("Cache-Control", storage.CacheImages)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	if _, err := io.Copy(w, body); err != nil {
		h.logger.Debug("file copy aborted", "key", key, "error", err)
	}
}

// ToggleTheme flips the stored theme and sends the browser back to the
// page it came from.
func (h *PageHandler) ToggleTheme(w http.ResponseWriter, r *http.Request) {
	next := theme.Toggle(theme.FromRequest(r))
	theme.SetCookie(w, next, h.isSecure)

	back := r.FormValue("return")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") || strings.HasPrefix(back, "/\\") {
		back = "/"
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}
