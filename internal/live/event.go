package live

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

// Event kinds pushed to the browser.
const (
	EventSession   = "session"
	EventPrimary   = "primary"
	EventSecondary = "secondary"
	EventCount     = "count"
	EventItems     = "items"
	EventOpen      = "open"
	EventActive    = "active"
	EventValue     = "value"
)

// Event is one server-sent event. Data is sent JSON-encoded.
type Event struct {
	Kind string
	Data any
}

type fragment struct {
	Target string `json:"target"`
	HTML   string `json:"html"`
	Text   string `json:"text"`
}

type activeItem struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
}

// WriteTo writes the event in text/event-stream framing.
func (e Event) WriteTo(w io.Writer) (int64, error) {
	payload, err := json.Marshal(e.Data)
	if err != nil {
		return 0, fmt.Errorf("encode %s event: %w", e.Kind, err)
	}
	n, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, payload)
	return int64(n), err
}

// outbox queues events until the stream picks them up. Every kind carries
// a complete state, so a newer event replaces a pending one of the same kind
// and the queue never holds more than one event per kind.
type outbox struct {
	mu      sync.Mutex
	pending []Event
	ready   chan struct{}
}

func newOutbox() *outbox {
	return &outbox{ready: make(chan struct{}, 1)}
}

func (o *outbox) push(e Event) {
	o.mu.Lock()
	for i, p := range o.pending {
		if p.Kind == e.Kind {
			o.pending = append(o.pending[:i], o.pending[i+1:]...)
			break
		}
	}
	o.pending = append(o.pending, e)
	o.mu.Unlock()

	select {
	case o.ready <- struct{}{}:
	default:
	}
}

func (o *outbox) drain() []Event {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := o.pending
	o.pending = nil
	return out
}
