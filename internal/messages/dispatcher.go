// Package messages implements the chat message dispatcher: validate,
// persist, then fan out to the recipient's live connection if one exists.
package messages

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/live"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/metrics"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
)

// MessageStore is the slice of the document store the dispatcher needs.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *store.Message) error
	ThreadMessages(ctx context.Context, userA, userB string) ([]store.Message, error)
	MarkSeen(ctx context.Context, fromUserID, toUserID string) error
	RecentMessages(ctx context.Context, userID string) ([]store.Message, error)
}

// Directory resolves user display metadata for delivery payloads.
type Directory interface {
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Deliverer pushes a frame to a recipient's live connection if present.
type Deliverer interface {
	DeliverIfPresent(userID string, f live.Frame) bool
}

// Dispatcher validates and persists outgoing chat messages and triggers
// best-effort live delivery. The persisted message is the source of truth;
// live delivery is an optimization and its outcome is never surfaced to the
// sender.
type Dispatcher struct {
	store MessageStore
	users Directory
	reg   Deliverer

	Now   func() time.Time // injectable clock for testing
	NewID func() string
}

// NewDispatcher wires a dispatcher from its collaborators.
func NewDispatcher(st MessageStore, users Directory, reg Deliverer) *Dispatcher {
	return &Dispatcher{
		store: st,
		users: users,
		reg:   reg,
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

// UserView is the denormalized sender block embedded in delivery payloads so
// the recipient needs no follow-up fetch.
type UserView struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	FullName       string `json:"full_name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
}

// DeliveredMessage is the wire payload pushed over the live stream: the full
// message plus sender metadata.
type DeliveredMessage struct {
	store.Message
	From UserView `json:"from_user"`
}

// Send validates, persists and dispatches one outgoing message. At least one
// of text/mediaURL must be present; mediaURL classifies the message as an
// image. The returned message is the persisted document.
func (d *Dispatcher) Send(ctx context.Context, fromUserID, toUserID, text, mediaURL string) (*store.Message, error) {
	if err := validateRecipient(toUserID); err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" && mediaURL == "" {
		return nil, &ValidationError{Field: "message", Reason: "either text or media is required"}
	}

	kind := store.KindText
	if mediaURL != "" {
		kind = store.KindImage
	}
	msg := &store.Message{
		ID:         d.NewID(),
		FromUserID: fromUserID,
		ToUserID:   toUserID,
		Text:       text,
		MediaURL:   mediaURL,
		Kind:       kind,
		CreatedAt:  d.Now().UTC(),
	}
	if err := d.store.CreateMessage(ctx, msg); err != nil {
		return nil, &StorageError{Op: "create message", Err: err}
	}
	metrics.IncMessageSent()

	d.deliver(ctx, msg)
	return msg, nil
}

// deliver pushes the denormalized message to the recipient's live stream.
// Failures here are logged, never returned: the message is already durable.
func (d *Dispatcher) deliver(ctx context.Context, msg *store.Message) {
	payload := DeliveredMessage{Message: *msg}
	sender, err := d.users.GetUser(ctx, msg.FromUserID)
	if err != nil {
		logging.Get().Warn().Err(err).Str("user", msg.FromUserID).Msg("sender lookup failed; delivering without metadata")
	} else {
		payload.From = UserView{
			ID:             sender.ID,
			Username:       sender.Username,
			FullName:       sender.FullName,
			ProfilePicture: sender.ProfilePicture,
		}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Get().Error().Err(err).Str("message", msg.ID).Msg("failed encoding delivery payload")
		return
	}
	if d.reg.DeliverIfPresent(msg.ToUserID, live.Frame{Event: live.EventMessage, Data: data}) {
		logging.Get().Debug().Str("message", msg.ID).Str("to", msg.ToUserID).Msg("message delivered live")
	} else {
		logging.Get().Debug().Str("message", msg.ID).Str("to", msg.ToUserID).Msg("recipient offline; message persisted only")
	}
}

// Thread returns all messages between the caller and peer, newest first, and
// as a side effect marks everything the peer sent the caller as seen.
func (d *Dispatcher) Thread(ctx context.Context, userID, peerID string) ([]store.Message, error) {
	msgs, err := d.store.ThreadMessages(ctx, userID, peerID)
	if err != nil {
		return nil, &StorageError{Op: "fetch thread", Err: err}
	}
	if err := d.store.MarkSeen(ctx, peerID, userID); err != nil {
		// The fetch succeeded; a failed seen update only delays read receipts.
		logging.Get().Warn().Err(err).Str("user", userID).Str("peer", peerID).Msg("failed marking thread seen")
	}
	return msgs, nil
}

// RecentMessage is a feed entry with the sender denormalized.
type RecentMessage struct {
	store.Message
	From UserView `json:"from_user"`
}

// Recent returns the messages addressed to the user, newest first, with
// sender metadata resolved.
func (d *Dispatcher) Recent(ctx context.Context, userID string) ([]RecentMessage, error) {
	msgs, err := d.store.RecentMessages(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "fetch recent messages", Err: err}
	}
	// Small per-sender cache; feeds are dominated by a handful of senders.
	seen := make(map[string]UserView)
	out := make([]RecentMessage, 0, len(msgs))
	for _, m := range msgs {
		v, ok := seen[m.FromUserID]
		if !ok {
			if u, err := d.users.GetUser(ctx, m.FromUserID); err == nil {
				v = UserView{ID: u.ID, Username: u.Username, FullName: u.FullName, ProfilePicture: u.ProfilePicture}
			} else {
				v = UserView{ID: m.FromUserID}
			}
			seen[m.FromUserID] = v
		}
		out = append(out, RecentMessage{Message: m, From: v})
	}
	return out, nil
}

func validateRecipient(id string) error {
	if id == "" {
		return &ValidationError{Field: "to_user_id", Reason: "required"}
	}
	if strings.ContainsAny(id, " \t\n") {
		return &ValidationError{Field: "to_user_id", Reason: "malformed"}
	}
	return nil
}
