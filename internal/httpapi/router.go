// Package httpapi exposes the inbound HTTP surface: message endpoints, the
// SSE live stream, and the workflow trigger intake. Authentication itself is
// external; a trusted fronting proxy supplies the caller's user id.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/live"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/messages"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/workflow"
)

// WorkflowTrigger starts a workflow run for an inbound event.
type WorkflowTrigger interface {
	Trigger(ctx context.Context, workflowName, subjectID string) (*store.WorkflowRun, error)
}

// Server holds the handlers' collaborators.
type Server struct {
	dispatcher *messages.Dispatcher
	registry   *live.Registry
	trigger    WorkflowTrigger

	// streamWriteTimeout bounds each SSE frame write; see live.Stream.
	streamWriteTimeout time.Duration
}

// New wires a Server.
func New(d *messages.Dispatcher, reg *live.Registry, trigger WorkflowTrigger, streamWriteTimeout time.Duration) *Server {
	return &Server{
		dispatcher:         d,
		registry:           reg,
		trigger:            trigger,
		streamWriteTimeout: streamWriteTimeout,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/api/healthz", s.handleHealthz)

	r.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/api/messages", s.handleSendMessage)
		r.Get("/api/messages/thread/{userID}", s.handleThread)
		r.Get("/api/messages/recent", s.handleRecent)
		r.Get("/api/stream", s.handleStream)
		r.Post("/api/events/connection-request", s.handleConnectionRequestEvent)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps core errors to HTTP statuses. Validation failures
// are the caller's fault; storage failures are ours and stay opaque.
func writeDomainError(w http.ResponseWriter, err error) {
	var ve *messages.ValidationError
	if errors.As(err, &ve) {
		writeError(w, http.StatusBadRequest, ve.Error())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

// compile-time check that the real scheduler satisfies the trigger interface
var _ WorkflowTrigger = (*workflow.Scheduler)(nil)
