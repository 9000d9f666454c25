// Package live runs the server side of interactive page views.
//
// Each browser page opens one Session over a Server-Sent Events stream. The
// session owns a view.Loop goroutine holding the page's filter and
// autocomplete state; HTTP handlers translate DOM events into posts on that
// loop, and every fragment the loop renders is queued for the stream.
// Sessions end when the stream closes or when the Manager's janitor finds
// them idle past the TTL.
package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DukeRupert/uphill/internal/catalog"
	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/metrics"
	"github.com/DukeRupert/uphill/internal/render"
	"github.com/DukeRupert/uphill/internal/view"
)

// DefaultTTL is how long a session may go without browser events.
const DefaultTTL = 30 * time.Minute

// Config configures a Manager.
type Config struct {
	Store  *catalog.Store
	Thumbs render.Thumbnails

	// Debounce delays resort searches. Zero recomputes on every keystroke.
	Debounce time.Duration
	// SuggestionLimit caps autocomplete lists. Zero means the default.
	SuggestionLimit int
	// TTL expires idle sessions. Zero means DefaultTTL.
	TTL time.Duration
	// Clock drives debounce timers. Nil means the system clock.
	Clock view.Clock

	Logger *slog.Logger
}

// Manager tracks the open sessions.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

// NewManager returns an empty manager.
func NewManager(cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		cfg:      cfg,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// Open starts a session for page whose initial view was rendered with
// criteria. table reports whether the table layout is on screen.
func (m *Manager) Open(page string, criteria filter.Criteria, table bool) (*Session, error) {
	s, err := newSession(uuid.NewString(), page, criteria, table, m.cfg)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.mu.Lock()
	m.sessions[s.id] = &entry{session: s, cancel: cancel}
	m.mu.Unlock()

	go s.run(ctx)

	metrics.SessionOpened(page)
	m.logger.Debug("live session opened", "session", s.id, "page", page)
	return s, nil
}

// Get returns the open session with id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	e, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, domain.Gone("live.get", "This page has been idle too long. Reload to continue.")
	}
	return e.session, nil
}

// Close ends the session with id. Closing an unknown id is a no-op.
func (m *Manager) Close(id string) {
	m.remove(id, false)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) remove(id string, expired bool) bool {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	e.cancel()
	e.session.close()
	metrics.SessionClosed(expired)
	m.logger.Debug("live session closed", "session", id, "expired", expired)
	return true
}

// Sweep closes every session idle since before now minus the TTL and
// returns how many it closed.
func (m *Manager) Sweep(now time.Time) int {
	cutoff := now.Add(-m.cfg.TTL)

	m.mu.RLock()
	var stale []string
	for id, e := range m.sessions {
		if e.session.LastSeen().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	n := 0
	for _, id := range stale {
		if m.remove(id, true) {
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx is done, then closes every session.
func (m *Manager) Run(ctx context.Context) error {
	interval := m.cfg.TTL / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return nil
		case now := <-ticker.C:
			if n := m.Sweep(now); n > 0 {
				m.logger.Info("expired idle live sessions", "count", n, "open", m.Len())
			}
		}
	}
}

func (m *Manager) closeAll() {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	for _, id := range ids {
		m.remove(id, false)
	}
}
