package sitegen

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/handler"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/storage"
	"github.com/DukeRupert/uphill/web"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRenderer(t *testing.T) *handler.Renderer {
	t.Helper()
	r, err := handler.NewRenderer(handler.RendererConfig{FS: web.Templates(), Logger: discardLogger()})
	require.NoError(t, err)
	return r
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestInject(t *testing.T) {
	page := []byte("<div>" + render.CardsStart + "old" + render.CardsEnd + "</div>" +
		"<tbody>" + render.TableStart + render.TableEnd + "</tbody>" +
		"<div>" + render.CardsStart + render.CardsEnd + "</div>" +
		"<span>" + render.CountMarker + "</span><span>" + render.CountMarker + "</span>")

	got := string(Inject(page, "<a>", "<tr>", "3 of 25 resorts", discardLogger()))

	assert.Equal(t, 2, strings.Count(got, render.CardsStart+"\n<a>\n"+render.CardsRegion.Indent+render.CardsEnd))
	assert.NotContains(t, got, "old")
	assert.Contains(t, got, render.TableStart+"\n<tr>\n"+render.TableRegion.Indent+render.TableEnd)
	assert.Equal(t, "<span>3 of 25 resorts</span><span>"+render.CountMarker+"</span>", got[strings.Index(got, "<span>"):])
}

func TestInject_MissingMarkersWarn(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	page := []byte("<main>nothing to fill</main>")
	got := Inject(page, "<a>", "<tr>", "1 & 2", logger)

	assert.Equal(t, string(page), string(got))
	assert.Contains(t, logs.String(), "region=cards")
	assert.Contains(t, logs.String(), "region=table")
	assert.Contains(t, logs.String(), "count marker not found")
}

func TestInject_EscapesCount(t *testing.T) {
	got := Inject([]byte(render.CountMarker), "", "", "<b>", discardLogger())
	assert.Equal(t, "&lt;b&gt;", string(got))
}

func TestRenderIndex_MatchesServer(t *testing.T) {
	store, err := catalog.Load(catalog.EmbeddedFS(), nil)
	require.NoError(t, err)
	renderer := newRenderer(t)

	static, err := RenderIndex(renderer, store, discardLogger())
	require.NoError(t, err)

	files, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, discardLogger())
	require.NoError(t, err)
	mux := http.NewServeMux()
	handler.NewPageHandler(handler.PageHandlerConfig{
		Store:    store,
		Files:    files,
		Renderer: renderer,
		Logger:   discardLogger(),
	}).RegisterRoutes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, rec.Body.String(), string(static))

	// Clearing every filter re-renders exactly the published page.
	cleared, err := renderer.Render(handler.PageIndex, handler.IndexData(store.Resorts(), filter.Criteria{}, ""))
	require.NoError(t, err)
	assert.Equal(t, string(cleared), string(static))

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(static))
	require.NoError(t, err)
	assert.Equal(t, 25, doc.Find("#resortCards article").Length())
	assert.Equal(t, 25, doc.Find("#resortTableBody tr").Length())
	assert.Equal(t, "25 of 25 resorts", doc.Find("#resortCount").Text())
}

func TestThumbnail_FitsBounds(t *testing.T) {
	out, err := Thumbnail(pngBytes(t, 1600, 900))
	require.NoError(t, err)

	img, format, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, ThumbnailMaxWidth, img.Bounds().Dx())
	assert.Equal(t, 360, img.Bounds().Dy())

	_, err = Thumbnail([]byte("\x00\x00\x00\x1cftypavif"))
	assert.ErrorIs(t, err, errUndecodable)
}

func newGenerator(t *testing.T, data, assets fs.FS) (*Generator, string) {
	t.Helper()
	out := t.TempDir()
	files, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: out}, discardLogger())
	require.NoError(t, err)

	g, err := New(Config{
		Data:     data,
		Assets:   assets,
		Static:   web.Static(),
		Renderer: newRenderer(t),
		Files:    files,
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	return g, out
}

func TestBuild(t *testing.T) {
	assets := fstest.MapFS{
		"images/epic-logo.webp":     {Data: []byte("logo")},
		"trailmaps/WinterPark.webp": {Data: pngBytes(t, 800, 600)},
		"trailmaps/Copper.webp":     {Data: []byte("not an image")},
		"trailmaps/Vail.avif":       {Data: []byte("avif")},
	}
	g, out := newGenerator(t, catalog.EmbeddedFS(), assets)

	rep, err := g.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, rep.Pages, "index, gallery and three area pages")
	assert.Equal(t, 1, rep.Thumbnails)
	assert.GreaterOrEqual(t, rep.Files, len(assets)+2)

	for _, key := range []string{
		storage.IndexKey,
		storage.TrailMapsKey,
		storage.GroupPageKey("aspen"),
		storage.GroupPageKey("monarch"),
		storage.GroupPageKey("cooper"),
		"images/epic-logo.webp",
		"trailmaps/Vail.avif",
		"static/js/live.js",
		"static/css/site.css",
		storage.ThumbnailKey("WinterPark.webp"),
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(key)))
	}
	assert.NoFileExists(t, filepath.Join(out, filepath.FromSlash(storage.ThumbnailKey("Copper.webp"))))

	gallery, err := os.ReadFile(filepath.Join(out, storage.TrailMapsKey))
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(gallery))
	require.NoError(t, err)
	assert.Equal(t, 30, doc.Find("#trailMapsGrid .col").Length())
	assert.Equal(t, 1, doc.Find(`img[src="/trailmaps/thumbs/WinterPark.jpg"]`).Length())

	index, err := os.ReadFile(filepath.Join(out, storage.IndexKey))
	require.NoError(t, err)
	assert.Contains(t, string(index), render.CardsStart)
	assert.NotContains(t, string(index), render.CountMarker)

	// Rebuilding over an existing site overwrites it.
	_, err = g.Build(context.Background())
	assert.NoError(t, err)
}

func TestBuild_BadDataFails(t *testing.T) {
	g, _ := newGenerator(t, fstest.MapFS{
		catalog.ResortsFile:   {Data: []byte("{")},
		catalog.TrailMapsFile: {Data: []byte("maps: []")},
	}, nil)

	_, err := g.Build(context.Background())
	assert.Error(t, err)
}

func TestExistingThumbnails(t *testing.T) {
	files, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, discardLogger())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, files.Put(ctx, storage.ThumbnailKey("Eldora.webp"), strings.NewReader("jpeg"), storage.PutOptions{}))

	store, err := catalog.Load(catalog.EmbeddedFS(), nil)
	require.NoError(t, err)

	thumbs, err := ExistingThumbnails(ctx, files, store.TrailMaps())
	require.NoError(t, err)
	assert.Equal(t, render.Thumbnails{"Eldora.webp": "/trailmaps/thumbs/Eldora.jpg"}, thumbs)
}

func TestWatch_RebuildsOnChange(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{catalog.ResortsFile, catalog.TrailMapsFile} {
		data, err := fs.ReadFile(catalog.EmbeddedFS(), name)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	g, out := newGenerator(t, os.DirFS(dir), nil)

	built := make(chan error, 8)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- g.Watch(ctx, WatchOptions{
			Dirs:  []string{dir},
			Delay: 10 * time.Millisecond,
			Built: func(_ Report, err error) { built <- err },
		})
	}()

	// The watcher registers asynchronously; touch the file until a
	// rebuild is reported.
	resorts := filepath.Join(dir, catalog.ResortsFile)
	data, err := os.ReadFile(resorts)
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
wait:
	for {
		select {
		case err := <-built:
			require.NoError(t, err)
			break wait
		case <-tick.C:
			require.NoError(t, os.WriteFile(resorts, data, 0o644))
		case <-deadline:
			t.Fatal("no rebuild after change")
		}
	}
	assert.FileExists(t, filepath.Join(out, storage.IndexKey))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}
