package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/workflow"
)

type sendMessageRequest struct {
	ToUserID string `json:"to_user_id"`
	Text     string `json:"text,omitempty"`
	MediaURL string `json:"media_url,omitempty"`
}

// handleSendMessage persists an outgoing message and acknowledges it
// immediately; live delivery to the recipient happens best-effort behind
// the acknowledgment.
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	msg, err := s.dispatcher.Send(r.Context(), UserID(r.Context()), req.ToUserID, req.Text, req.MediaURL)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) handleThread(w http.ResponseWriter, r *http.Request) {
	peerID := chi.URLParam(r, "userID")
	msgs, err := s.dispatcher.Thread(r.Context(), UserID(r.Context()), peerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.dispatcher.Recent(r.Context(), UserID(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

type connectionRequestEvent struct {
	ID string `json:"id"`
}

// handleConnectionRequestEvent is the intake for connection-request-created
// events from the connection-graph subsystem. It starts the reminder
// workflow and acknowledges; the run itself proceeds on the scheduler.
func (s *Server) handleConnectionRequestEvent(w http.ResponseWriter, r *http.Request) {
	var ev connectionRequestEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil || ev.ID == "" {
		writeError(w, http.StatusBadRequest, "event id is required")
		return
	}
	run, err := s.trigger.Trigger(r.Context(), workflow.ConnectionRequestReminder, ev.ID)
	if err != nil {
		logging.Get().Error().Err(err).Str("request", ev.ID).Msg("failed triggering reminder workflow")
		writeError(w, http.StatusInternalServerError, "failed to start workflow")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"run_id": run.ID})
}
