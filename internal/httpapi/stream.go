package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/live"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
)

// sseStream adapts an SSE response to the live.Stream interface. Each frame
// write is bounded by a deadline so a dead client cannot wedge a delivery;
// the registry treats a deadline error as a stale handle.
type sseStream struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	rc      *http.ResponseController
	timeout time.Duration
	closed  bool
}

var errStreamClosed = errors.New("stream closed")

func (s *sseStream) Send(f live.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errStreamClosed
	}
	if s.timeout > 0 {
		if err := s.rc.SetWriteDeadline(time.Now().Add(s.timeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", f.Event, f.Data); err != nil {
		return err
	}
	return s.rc.Flush()
}

// close marks the stream unusable. It must run before the handler returns:
// the ResponseWriter is invalid after that point, and taking the write lock
// here means any in-flight Send finishes first while later Sends fail and
// get the handle evicted as stale.
func (s *sseStream) close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
}

// handleStream establishes the long-lived SSE connection: register with the
// live registry, hold the request open, deregister on transport close. The
// registry emits the initial "connected" frame during Register.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	st := &sseStream{w: w, rc: http.NewResponseController(w), timeout: s.streamWriteTimeout}
	s.registry.Register(userID, st)
	defer s.registry.Unregister(userID, st)

	logging.Get().Info().Str("user", userID).Msg("client connected to event stream")
	<-r.Context().Done()
	st.close()
	logging.Get().Info().Str("user", userID).Msg("client disconnected")
}
