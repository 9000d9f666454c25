package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/live"
	"github.com/DukeRupert/uphill/internal/storage"
	"github.com/DukeRupert/uphill/internal/theme"
	"github.com/DukeRupert/uphill/web"
)

type testApp struct {
	mux     *http.ServeMux
	files   *storage.LocalStorage
	manager *live.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := discardLogger()

	store, err := catalog.Load(catalog.EmbeddedFS(), nil)
	require.NoError(t, err)

	renderer, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: logger})
	require.NoError(t, err)

	files, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()}, logger)
	require.NoError(t, err)

	manager := live.NewManager(live.Config{Store: store, Logger: logger})
	t.Cleanup(func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_ = manager.Run(ctx)
	})

	mux := http.NewServeMux()
	NewPageHandler(PageHandlerConfig{
		Store:    store,
		Files:    files,
		Renderer: renderer,
		Logger:   logger,
	}).RegisterRoutes(mux)
	NewLiveHandler(manager, logger).RegisterRoutes(mux, nil)

	return &testApp{mux: mux, files: files, manager: manager}
}

func (a *testApp) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	a.mux.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) get(t *testing.T, target string) (*httptest.ResponseRecorder, *goquery.Document) {
	t.Helper()
	rec := a.do(t, httptest.NewRequest(http.MethodGet, target, nil))
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return rec, doc
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRenderer_LoadsEveryPage(t *testing.T) {
	r, err := NewRenderer(RendererConfig{FS: web.Templates(), Logger: discardLogger()})
	require.NoError(t, err)
	assert.Equal(t, []string{PageIndex, PageResortTrailMaps, PageTrailMaps}, r.ListTemplates())

	_, err = r.Render("missing", PageData{})
	assert.Error(t, err)
}

func TestIndex_RendersEveryResort(t *testing.T) {
	app := newTestApp(t)
	rec, doc := app.get(t, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, 25, doc.Find("#resortCards article").Length())
	assert.Equal(t, 25, doc.Find("#resortTableBody tr").Length())
	assert.Equal(t, "25 of 25 resorts", doc.Find("#resortCount").Text())
	assert.Equal(t, "resorts", doc.Find("body").AttrOr("data-live", ""))

	_, themed := doc.Find("html").Attr("data-theme")
	assert.False(t, themed, "no theme without a cookie or hint")
	assert.Equal(t, 2, doc.Find(`meta[name="theme-color"]`).Length())

	assert.Contains(t, rec.Body.String(), "<!-- STATIC_CARDS_START -->")
}

func TestIndex_FiltersFromQuery(t *testing.T) {
	app := newTestApp(t)
	_, doc := app.get(t, "/?search=creek&pass=Epic&access=bogus")

	assert.Equal(t, "creek", doc.Find("#searchInput").AttrOr("value", ""))
	assert.Equal(t, "Epic", doc.Find("#passFilter option[selected]").AttrOr("value", ""))
	assert.Equal(t, 0, doc.Find("#accessFilter option[selected]").Length(), "unknown values are ignored")

	names := doc.Find("#resortCards article").Map(func(_ int, s *goquery.Selection) string {
		return s.AttrOr("data-resort", "")
	})
	assert.Equal(t, []string{"beaver creek"}, names)
	assert.Equal(t, len(names), doc.Find("#resortTableBody tr").Length())
}

func TestIndex_Theme(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: theme.CookieName, Value: "dark"})
	rec := app.do(t, req)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)

	assert.Equal(t, "dark", doc.Find("html").AttrOr("data-theme", ""))
	metas := doc.Find(`meta[name="theme-color"]`)
	require.Equal(t, 1, metas.Length())
	assert.Equal(t, "#0f172a", metas.AttrOr("content", ""))
}

func TestUnknownPathIsNotFound(t *testing.T) {
	app := newTestApp(t)
	rec, _ := app.get(t, "/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrailMaps(t *testing.T) {
	app := newTestApp(t)

	_, doc := app.get(t, "/trailmaps")
	assert.Equal(t, 30, doc.Find("#trailMapsGrid .col").Length())
	assert.Equal(t, "30 trail maps", doc.Find("#resultsCount").Text())
	assert.Equal(t, "trailmaps", doc.Find("body").AttrOr("data-live", ""))

	_, doc = app.get(t, "/trailmaps?search=aspen")
	assert.Equal(t, 4, doc.Find("#trailMapsGrid .col").Length())
	assert.Equal(t, "4 of 30 trail maps", doc.Find("#resultsCount").Text())
}

func TestTrailMapGroupPage(t *testing.T) {
	app := newTestApp(t)

	for _, target := range []string{"/trailmaps/aspen", "/trailmaps/aspen.html"} {
		rec, doc := app.get(t, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		assert.Equal(t, "aspen", doc.Find("body").AttrOr("data-resort", ""))
		assert.Equal(t, 4, doc.Find("#trailMapsGrid .col").Length())
		assert.Equal(t, "4 trail maps", doc.Find("#resultsCount").Text())
		_, hasLive := doc.Find("body").Attr("data-live")
		assert.False(t, hasLive)
	}

	rec, _ := app.get(t, "/trailmaps/vail")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTrailMapImageFromStorage(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.files.Put(context.Background(), storage.TrailMapKey("Vail.avif"),
		strings.NewReader("avif-bytes"), storage.PutOptions{}))

	rec, _ := app.get(t, "/trailmaps/Vail.avif")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/avif", rec.Header().Get("Content-Type"))
	assert.Equal(t, storage.CacheImages, rec.Header().Get("Cache-Control"))
	assert.Equal(t, "avif-bytes", rec.Body.String())

	rec, _ = app.get(t, "/trailmaps/Missing.webp")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = app.get(t, "/images/epic-logo.webp")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleTheme(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, postForm("/theme", url.Values{"return": {"/trailmaps"}}))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/trailmaps", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "dark", cookies[0].Value)

	req := postForm("/theme", url.Values{"return": {"//evil.example"}})
	req.AddCookie(&http.Cookie{Name: theme.CookieName, Value: "dark"})
	rec = app.do(t, req)
	assert.Equal(t, "/", rec.Header().Get("Location"))
	assert.Equal(t, "light", rec.Result().Cookies()[0].Value)
}

func TestLiveEvents(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, postForm("/live/unknown/input", url.Values{"search": {"vail"}}))
	assert.Equal(t, http.StatusGone, rec.Code)

	s, err := app.manager.Open(live.PageResorts, filter.Criteria{}, true)
	require.NoError(t, err)
	base := "/live/" + s.ID()

	rec = app.do(t, postForm(base+"/input", url.Values{"search": {"vail"}}))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, postForm(base+"/key", url.Values{"key": {"ArrowDown"}}))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, postForm(base+"/key", url.Values{"key": {"Tab"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, postForm(base+"/pick", url.Values{"index": {"first"}}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{"/pass", "/access", "/outside", "/focus", "/layout"} {
		rec = app.do(t, postForm(base+path, url.Values{}))
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}

	app.manager.Close(s.ID())
	rec = app.do(t, postForm(base+"/focus", url.Values{}))
	assert.Equal(t, http.StatusGone, rec.Code)
}

func TestLiveConnect_RejectsUnknownPage(t *testing.T) {
	app := newTestApp(t)
	rec, _ := app.get(t, "/live/connect?page=checkout")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
