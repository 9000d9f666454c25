package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/DukeRupert/uphill/internal/autocomplete"
	"github.com/DukeRupert/uphill/internal/domain"
	"github.com/DukeRupert/uphill/internal/filter"
	"github.com/DukeRupert/uphill/internal/live"
)

// LiveHandler connects browsers to their live sessions. The stream request
// opens the session; every other route posts one DOM event to it.
type LiveHandler struct {
	manager *live.Manager
	logger  *slog.Logger
}

// NewLiveHandler creates a LiveHandler.
func NewLiveHandler(manager *live.Manager, logger *slog.Logger) *LiveHandler {
	return &LiveHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers the live routes. limit wraps the event routes,
// typically with a rate limiter; nil leaves them unwrapped.
func (h *LiveHandler) RegisterRoutes(mux *http.ServeMux, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("GET /live/connect", limit(http.HandlerFunc(h.Connect)))

	events := map[string]func(*live.Session, *http.Request) (bool, error){
		"input":   h.input,
		"pass":    h.pass,
		"access":  h.access,
		"key":     h.key,
		"pick":    h.pick,
		"outside": h.outside,
		"focus":   h.focus,
		"layout":  h.layout,
	}
	for name, fn := range events {
		mux.Handle("POST /live/{id}/"+name, limit(h.event(fn)))
	}
}

// Connect opens a session for the page described by the query and streams
// its fragments until the browser goes away.
func (h *LiveHandler) Connect(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s, err := h.manager.Open(q.Get("page"), filter.ParseCriteria(q), q.Get("table") != "")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}
	defer h.manager.Close(s.ID())

	if err := live.Stream(r.Context(), w, s); err != nil {
		h.logger.Debug("live stream ended", "session", s.ID(), "error", err)
	}
}

// event adapts a session event to a handler. A session that has ended
// answers 410 so the client knows to reconnect.
func (h *LiveHandler) event(fn func(*live.Session, *http.Request) (bool, error)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := h.manager.Get(r.PathValue("id"))
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		if err := r.ParseForm(); err != nil {
			ErrorResponse(w, r, h.logger, domain.Invalid("live.event", "malformed form"))
			return
		}

		ok, err := fn(s, r)
		if err != nil {
			ErrorResponse(w, r, h.logger, err)
			return
		}
		if !ok {
			ErrorResponse(w, r, h.logger, domain.Gone("live.event", "This page has been idle too long. Reload to continue."))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func (h *LiveHandler) input(s *live.Session, r *http.Request) (bool, error) {
	return s.Input(r.PostForm.Get("search")), nil
}

func (h *LiveHandler) pass(s *live.Session, r *http.Request) (bool, error) {
	return s.SetPass(filter.ParsePassFilter(r.PostForm.Get("pass"))), nil
}

func (h *LiveHandler) access(s *live.Session, r *http.Request) (bool, error) {
	return s.SetAccess(filter.ParseAccessFilter(r.PostForm.Get("access"))), nil
}

func (h *LiveHandler) key(s *live.Session, r *http.Request) (bool, error) {
	k := autocomplete.ParseKey(r.PostForm.Get("key"))
	if k == autocomplete.KeyOther {
		return false, domain.Invalid("live.key", "unsupported key")
	}
	return s.Key(k), nil
}

func (h *LiveHandler) pick(s *live.Session, r *http.Request) (bool, error) {
	index, err := strconv.Atoi(r.PostForm.Get("index"))
	if err != nil {
		return false, domain.Invalid("live.pick", "index must be a number")
	}
	return s.Pick(index), nil
}

func (h *LiveHandler) outside(s *live.Session, _ *http.Request) (bool, error) {
	return s.ClickOutside(), nil
}

func (h *LiveHandler) focus(s *live.Session, _ *http.Request) (bool, error) {
	return s.Focus(), nil
}

func (h *LiveHandler) layout(s *live.Session, r *http.Request) (bool, error) {
	return s.SetTableVisible(r.PostForm.Get("table") != ""), nil
}
