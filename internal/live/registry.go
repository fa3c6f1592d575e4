// Package live tracks the open outbound event stream of every connected
// user and fans newly created chat messages out to them.
package live

import (
	"encoding/json"
	"sync"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/metrics"
)

// Frame is one self-describing event written to a live stream.
type Frame struct {
	Event string
	Data  []byte
}

// EventConnected is the acknowledgment frame emitted when a stream attaches.
const EventConnected = "connected"

// EventMessage carries a denormalized chat message.
const EventMessage = "message"

// Stream is a writable, long-lived outbound event stream. The underlying
// transport is owned by the HTTP layer; the registry only references it.
// Send must bound its own write (a dead client must not block forever) and
// return an error when the handle is no longer usable.
type Stream interface {
	Send(Frame) error
}

// entry holds one user's current stream. The entry-level mutex serializes
// writes to this stream only, so a slow recipient never stalls deliveries
// to anyone else.
type entry struct {
	mu     sync.Mutex
	stream Stream
}

// Registry is the in-process map from user id to live stream. It is shared
// mutable state touched from every request-handling goroutine; construct one
// per process and inject it where needed.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Register records the stream as the user's current live connection,
// replacing any prior handle. The prior handle is considered dead from this
// point; it is never written to again. An initial acknowledgment frame is
// emitted on the new stream.
func (r *Registry) Register(userID string, s Stream) {
	e := &entry{stream: s}
	r.mu.Lock()
	r.entries[userID] = e
	n := len(r.entries)
	r.mu.Unlock()
	metrics.SetLiveConnections(n)
	logging.Get().Debug().Str("user", userID).Msg("live connection registered")

	ack, _ := json.Marshal(map[string]string{"status": "connected"})
	if err := write(e, Frame{Event: EventConnected, Data: ack}); err != nil {
		logging.Get().Warn().Err(err).Str("user", userID).Msg("failed writing connected frame")
	}
}

// DeliverIfPresent writes the frame to the user's live stream if one is
// registered. The returned bool reports whether a live handle was found;
// absence is the normal offline case, not an error. A write failure marks
// the handle stale: it is evicted and the delivery is treated as a miss.
func (r *Registry) DeliverIfPresent(userID string, f Frame) bool {
	r.mu.Lock()
	e, ok := r.entries[userID]
	r.mu.Unlock()
	if !ok {
		metrics.IncDeliveryMiss()
		return false
	}
	if err := write(e, f); err != nil {
		logging.Get().Warn().Err(err).Str("user", userID).Msg("stale live handle; evicting")
		r.evict(userID, e)
		metrics.IncStaleHandle()
		return false
	}
	metrics.IncDelivered()
	return true
}

// Unregister removes the mapping only when the stored handle is the one
// being closed. A handle already replaced by a newer connection (second
// browser tab) must not tear down its successor.
func (r *Registry) Unregister(userID string, s Stream) {
	r.mu.Lock()
	if e, ok := r.entries[userID]; ok && e.stream == s {
		delete(r.entries, userID)
	}
	n := len(r.entries)
	r.mu.Unlock()
	metrics.SetLiveConnections(n)
	logging.Get().Debug().Str("user", userID).Msg("live connection unregistered")
}

// Len returns the number of currently registered connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// write performs the actual stream write under the entry lock, never the
// registry lock.
func write(e *entry, f Frame) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stream.Send(f)
}

// evict removes the entry if it is still current.
func (r *Registry) evict(userID string, e *entry) {
	r.mu.Lock()
	if cur, ok := r.entries[userID]; ok && cur == e {
		delete(r.entries, userID)
	}
	n := len(r.entries)
	r.mu.Unlock()
	metrics.SetLiveConnections(n)
}
