// Package sitegen publishes the site as static files.
//
// Pages are rendered with the same templates and fragment renderers the
// server uses. The resort page is rendered with empty marker regions and
// filled in afterwards, so the markers stay in the output for later passes
// and the result matches what the server sends a visitor with no theme
// preference.
package sitegen

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"time"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/handler"
	"github.com/DukeRupert/uphill/internal/metrics"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/storage"
)

// Config holds the inputs of a Generator.
type Config struct {
	// Data holds resorts.json and trailmaps.yaml. It is read again on every
	// build so watched edits are picked up.
	Data fs.FS

	// Assets holds images/ and trailmaps/, copied as-is. Nil publishes
	// pages only.
	Assets fs.FS

	// Static holds the stylesheet and scripts, published under static/.
	Static fs.FS

	Renderer *handler.Renderer
	Files    storage.Storage
	Logger   *slog.Logger
}

// Generator renders and publishes the site.
type Generator struct {
	data     fs.FS
	assets   fs.FS
	static   fs.FS
	renderer *handler.Renderer
	files    storage.Storage
	logger   *slog.Logger
}

// New creates a Generator.
func New(cfg Config) (*Generator, error) {
	if cfg.Data == nil {
		return nil, errors.New("sitegen: data filesystem is required")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("sitegen: renderer is required")
	}
	if cfg.Files == nil {
		return nil, errors.New("sitegen: storage is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		data:     cfg.Data,
		assets:   cfg.Assets,
		static:   cfg.Static,
		renderer: cfg.Renderer,
		files:    cfg.Files,
		logger:   logger,
	}, nil
}

// Report summarises a build.
type Report struct {
	Pages      int
	Files      int
	Thumbnails int
	Duration   time.Duration
}

// Build renders every page and publishes it along with assets, thumbnails
// and static files.
func (g *Generator) Build(ctx context.Context) (rep Report, err error) {
	start := time.Now()
	defer func() {
		metrics.SiteBuilt(err)
		rep.Duration = time.Since(start)
	}()

	store, err := catalog.Load(g.data, g.logger)
	if err != nil {
		return rep, fmt.Errorf("load catalog: %w", err)
	}

	if g.assets != nil {
		n, err := g.publishTree(ctx, g.assets, "", storage.CacheImages)
		if err != nil {
			return rep, fmt.Errorf("publish assets: %w", err)
		}
		rep.Files += n
	}
	if g.static != nil {
		n, err := g.publishTree(ctx, g.static, "static", storage.CachePages)
		if err != nil {
			return rep, fmt.Errorf("publish static files: %w", err)
		}
		rep.Files += n
	}

	var thumbs render.Thumbnails
	if g.assets != nil {
		thumbs, err = g.thumbnails(ctx, g.assets, store.TrailMaps())
		if err != nil {
			return rep, err
		}
		rep.Thumbnails = len(thumbs)
	}

	pages, err := g.pages(store, thumbs)
	if err != nil {
		return rep, err
	}
	for key, body := range pages {
		if err := g.publish(ctx, key, body, storage.CachePages); err != nil {
			return rep, err
		}
		rep.Pages++
	}

	g.logger.Info("site built",
		"pages", rep.Pages,
		"files", rep.Files,
		"thumbnails", rep.Thumbnails,
		"duration", time.Since(start),
	)
	return rep, nil
}

// pages renders every page of the site keyed by storage key.
func (g *Generator) pages(store *catalog.Store, thumbs render.Thumbnails) (map[string][]byte, error) {
	pages := map[string][]byte{}

	index, err := RenderIndex(g.renderer, store, g.logger)
	if err != nil {
		return nil, err
	}
	pages[storage.IndexKey] = index

	body, err := g.renderer.Render(handler.PageTrailMaps, handler.TrailMapsData(store.TrailMaps(), thumbs, "", ""))
	if err != nil {
		return nil, fmt.Errorf("render trail maps: %w", err)
	}
	pages[storage.TrailMapsKey] = body

	for _, grp := range store.Groups() {
		data := handler.GroupData(grp, store.MapsByResort(grp.Slug), thumbs, "")
		body, err := g.renderer.Render(handler.PageResortTrailMaps, data)
		if err != nil {
			return nil, fmt.Errorf("render %s trail maps: %w", grp.Slug, err)
		}
		pages[storage.GroupPageKey(grp.Slug)] = body
	}
	return pages, nil
}

// RenderIndex renders the resort page with empty marker regions and fills
// them with every resort.
func RenderIndex(r *handler.Renderer, store *catalog.Store, logger *slog.Logger) ([]byte, error) {
	resorts := store.Resorts()
	data := handler.IndexData(resorts, filter.Criteria{}, "")
	data.Cards = render.CardsRegion.Empty()
	data.Table = render.TableRegion.Empty()
	data.Count = render.CountMarker

	page, err := r.Render(handler.PageIndex, data)
	if err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return Inject(page,
		render.Cards(resorts),
		render.TableRows(resorts),
		render.ResortCount(len(resorts), len(resorts)),
		logger,
	), nil
}

func (g *Generator) publish(ctx context.Context, key string, body []byte, cache string) error {
	if err := g.files.Put(ctx, key, bytes.NewReader(body), storage.PutOptions{
		CacheControl: cache,
		Overwrite:    true,
		Public:       true,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", key, err)
	}
	g.logger.Debug("published", "key", key, "size", len(body))
	return nil
}

// publishTree copies every file of fsys under prefix.
func (g *Generator) publishTree(ctx context.Context, fsys fs.FS, prefix, cache string) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		body, err := fs.ReadFile(fsys, p)
		if err != nil {
			return err
		}
		if err := g.publish(ctx, path.Join(prefix, p), body, cache); err != nil {
			return err
		}
		n++
		return nil
	})
	return n, err
}
