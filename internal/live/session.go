package live

import (
	"context"
	"html/template"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DukeRupert/uphill/internal/autocomplete"
	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/metrics"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/view"
)

// Pages that open live sessions.
const (
	PageResorts   = "resorts"
	PageTrailMaps = "trailmaps"
)

// Targets are the element ids a page's fragments replace.
type Targets struct {
	Primary   string
	Secondary string
	Count     string
}

// suggester is the part of an autocomplete.Controller a session drives.
type suggester interface {
	Input(value string)
	Key(k autocomplete.Key)
	Pick(index int)
	ClickOutside()
	Focus()
	State() autocomplete.State
	Count() int
}

// Session is the server side of one page view. Its Loop goroutine owns the
// filter state and the autocomplete state; handlers only post events to it.
type Session struct {
	id      string
	page    string
	targets Targets

	loop    *view.Loop
	coord   *view.Coordinator
	suggest suggester
	out     *outbox

	lastSeen atomic.Int64
	once     sync.Once
	done     chan struct{}
}

func newSession(id, page string, criteria filter.Criteria, table bool, cfg Config) (*Session, error) {
	s := &Session{
		id:   id,
		page: page,
		loop: view.NewLoop(),
		out:  newOutbox(),
		done: make(chan struct{}),
	}
	s.touch()

	opts := view.Options{
		Clock:            cfg.Clock,
		SecondaryVisible: table,
		Initial:          criteria,
		OnRender:         s.rendered,
	}

	switch page {
	case PageResorts:
		s.targets = Targets{Primary: "resortCards", Secondary: "resortTableBody", Count: "resortCount"}
		opts.Debounce = cfg.Debounce
		resorts := cfg.Store.Resorts()
		s.coord = view.NewCoordinator(s.loop, s, view.ResortDataset{Resorts: resorts}, opts)
		s.suggest = autocomplete.New[domain.Resort](s, autocomplete.Options[domain.Resort]{
			Query: func(v string) []domain.Resort {
				return filter.Resorts(resorts, filter.Criteria{Search: v})
			},
			Name:         func(r domain.Resort) string { return r.Name },
			Render:       render.ResortSuggestion,
			OnSelect:     s.selected,
			EmptyMessage: "No resorts found",
			Limit:        cfg.SuggestionLimit,
			Value:        criteria.Search,
		})

	case PageTrailMaps:
		// The gallery is small enough to filter on every keystroke.
		s.targets = Targets{Primary: "trailMapsGrid", Count: "resultsCount"}
		maps := cfg.Store.TrailMaps()
		s.coord = view.NewCoordinator(s.loop, s, view.TrailMapDataset{Maps: maps, Thumbs: cfg.Thumbs}, opts)
		s.suggest = autocomplete.New[domain.TrailMap](s, autocomplete.Options[domain.TrailMap]{
			Query: func(v string) []domain.TrailMap {
				return filter.TrailMaps(maps, v)
			},
			Name:         func(m domain.TrailMap) string { return m.Name },
			Render:       render.TrailMapSuggestion,
			OnSelect:     s.selected,
			EmptyMessage: "No trail maps found",
			Limit:        cfg.SuggestionLimit,
			Value:        criteria.Search,
		})

	default:
		return nil, domain.Invalid("live.open", "unknown page "+page)
	}

	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Page returns the page the session serves.
func (s *Session) Page() string { return s.page }

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// LastSeen returns the time of the last browser event.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch() {
	s.lastSeen.Store(time.Now().UnixNano())
}

func (s *Session) run(ctx context.Context) {
	_ = s.loop.Run(ctx)
	s.close()
}

func (s *Session) close() {
	s.once.Do(func() {
		s.loop.Close()
		close(s.done)
	})
}

// do queues fn on the session loop. It reports false once the session has
// ended.
func (s *Session) do(kind string, fn func()) bool {
	s.touch()
	metrics.LiveEventsTotal.WithLabelValues(kind).Inc()
	return s.loop.Post(fn)
}

// Input handles a keystroke in the search box.
func (s *Session) Input(value string) bool {
	return s.do("input", func() {
		s.suggest.Input(value)
		s.suggested()
		s.coord.SearchInput(value)
	})
}

// Key handles a keydown on the search box.
func (s *Session) Key(k autocomplete.Key) bool {
	return s.do("key", func() {
		reopen := s.suggest.State() == autocomplete.Closed && k == autocomplete.KeyDown
		s.suggest.Key(k)
		if reopen {
			s.suggested()
		}
	})
}

// Pick handles a pointer selection of the suggestion at index.
func (s *Session) Pick(index int) bool {
	return s.do("pick", func() { s.suggest.Pick(index) })
}

// ClickOutside handles a click away from the search box and its list.
func (s *Session) ClickOutside() bool {
	return s.do("outside", s.suggest.ClickOutside)
}

// Focus handles the search box gaining focus.
func (s *Session) Focus() bool {
	return s.do("focus", func() {
		s.suggest.Focus()
		s.suggested()
	})
}

// SetPass handles the pass select.
func (s *Session) SetPass(p domain.Pass) bool {
	return s.do("pass", func() { s.coord.SetPass(p) })
}

// SetAccess handles the operational-hours select.
func (s *Session) SetAccess(a filter.AccessFilter) bool {
	return s.do("access", func() { s.coord.SetAccess(a) })
}

// SetTableVisible records whether the table layout is on screen.
func (s *Session) SetTableVisible(visible bool) bool {
	return s.do("layout", func() { s.coord.SetSecondaryVisible(visible) })
}

// suggested records a list the last event opened or regenerated.
func (s *Session) suggested() {
	if s.suggest.State() != autocomplete.Closed {
		metrics.Suggested(s.page, s.suggest.Count())
	}
}

func (s *Session) selected(name string) {
	metrics.SuggestionsSelected.WithLabelValues(s.page).Inc()
	s.coord.Select(name)
}

func (s *Session) rendered(r view.Rendering, elapsed time.Duration) {
	metrics.Recomputed(s.page, r.Matched, elapsed)
}

// view.Page

func (s *Session) SetPrimary(h template.HTML) {
	s.out.push(Event{Kind: EventPrimary, Data: fragment{Target: s.targets.Primary, HTML: string(h)}})
}

func (s *Session) SetSecondary(h template.HTML) {
	if s.targets.Secondary == "" {
		return
	}
	s.out.push(Event{Kind: EventSecondary, Data: fragment{Target: s.targets.Secondary, HTML: string(h)}})
}

func (s *Session) SetCount(text string) {
	s.out.push(Event{Kind: EventCount, Data: fragment{Target: s.targets.Count, Text: text}})
}

// autocomplete.Surface

func (s *Session) SetItems(items template.HTML) {
	s.out.push(Event{Kind: EventItems, Data: map[string]string{"html": string(items)}})
}

func (s *Session) SetOpen(open bool) {
	s.out.push(Event{Kind: EventOpen, Data: map[string]bool{"open": open}})
}

func (s *Session) SetActive(index int) {
	a := activeItem{Index: index}
	if index >= 0 {
		a.ID = render.OptionID(index)
	}
	s.out.push(Event{Kind: EventActive, Data: a})
}

func (s *Session) SetValue(value string) {
	s.out.push(Event{Kind: EventValue, Data: map[string]string{"value": value}})
}
