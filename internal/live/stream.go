package live

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// keepAlive is the interval between comment lines that keep proxies from
// closing a quiet stream.
const keepAlive = 25 * time.Second

// Stream serves s as a text/event-stream until the client disconnects or
// the session ends. The first event carries the session id.
func Stream(ctx context.Context, w http.ResponseWriter, s *Session) error {
	rc := http.NewResponseController(w)
	// Streams outlive the server's write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if _, err := (Event{Kind: EventSession, Data: map[string]string{"id": s.id}}).WriteTo(w); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return fmt.Errorf("streaming unsupported: %w", err)
	}

	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.Done():
			return nil
		case <-s.out.ready:
			for _, e := range s.out.drain() {
				if _, err := e.WriteTo(w); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if _, err := io.WriteString(w, ": ping\n\n"); err != nil {
				return err
			}
		}
		if err := rc.Flush(); err != nil {
			return err
		}
	}
}
