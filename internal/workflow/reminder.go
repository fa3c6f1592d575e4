package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/metrics"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
)

// ConnectionRequestReminder is the workflow name for the connection-request
// notification flow: notify the target immediately, then remind them after a
// delay unless they already accepted.
const ConnectionRequestReminder = "connection-request-reminder"

// ReminderStore is what the reminder steps read. They never mutate the
// request; the status check at resume time is the only cancellation
// mechanism for a pending reminder.
type ReminderStore interface {
	GetConnectionRequest(ctx context.Context, id string) (*store.ConnectionRequest, error)
	GetUser(ctx context.Context, id string) (*store.User, error)
}

// Notifier delivers a single notification. Failures are retryable.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// NewConnectionRequestReminder builds the two-step reminder workflow. The
// run's subject id is the connection request id; delay is the durable
// suspension between the immediate notification and the reminder check.
func NewConnectionRequestReminder(st ReminderStore, n Notifier, delay time.Duration) *Workflow {
	return &Workflow{
		Name: ConnectionRequestReminder,
		Steps: []Step{
			{
				Name: "send-request-notification",
				Run: func(ctx context.Context, run *store.WorkflowRun) (StepResult, error) {
					req, target, requester, res, err := loadReminderContext(ctx, st, run)
					if req == nil {
						return res, err
					}
					subject := fmt.Sprintf("%s wants to connect with you", requester.FullName)
					body := fmt.Sprintf("Hi %s,\n\n%s (@%s) sent you a connection request on PingUp. Open your connections page to respond.\n",
						target.FullName, requester.FullName, requester.Username)
					if err := n.Send(ctx, target.Email, subject, body); err != nil {
						metrics.IncNotificationFailure()
						return StepResult{}, err
					}
					return StepResult{Suspend: delay}, nil
				},
			},
			{
				Name: "send-reminder",
				Run: func(ctx context.Context, run *store.WorkflowRun) (StepResult, error) {
					req, target, requester, res, err := loadReminderContext(ctx, st, run)
					if req == nil {
						return res, err
					}
					if req.Status == store.StatusAccepted {
						logging.Get().Info().Str("request", req.ID).Msg("connection request already accepted; skipping reminder")
						metrics.IncReminderSkipped()
						return StepResult{Done: true}, nil
					}
					subject := fmt.Sprintf("Reminder: %s is still waiting to connect", requester.FullName)
					body := fmt.Sprintf("Hi %s,\n\n%s (@%s) sent you a connection request and it is still pending. Open your connections page to respond.\n",
						target.FullName, requester.FullName, requester.Username)
					if err := n.Send(ctx, target.Email, subject, body); err != nil {
						metrics.IncNotificationFailure()
						return StepResult{}, err
					}
					metrics.IncReminderSent()
					return StepResult{Done: true}, nil
				},
			},
		},
	}
}

// loadReminderContext fetches the request and both user records. A missing
// request or target short-circuits the run (nothing left to notify about);
// any other failure is retryable. req == nil in the return value means the
// caller should return (res, err) as-is.
func loadReminderContext(ctx context.Context, st ReminderStore, run *store.WorkflowRun) (*store.ConnectionRequest, *store.User, *store.User, StepResult, error) {
	req, err := st.GetConnectionRequest(ctx, run.SubjectID)
	if errors.Is(err, store.ErrNotFound) {
		logging.Get().Warn().Str("request", run.SubjectID).Str("run", run.ID).Msg("connection request vanished; completing run")
		return nil, nil, nil, StepResult{Done: true}, nil
	}
	if err != nil {
		return nil, nil, nil, StepResult{}, err
	}
	target, err := st.GetUser(ctx, req.ToUserID)
	if errors.Is(err, store.ErrNotFound) {
		logging.Get().Warn().Str("user", req.ToUserID).Str("run", run.ID).Msg("request target has no directory entry; completing run")
		return nil, nil, nil, StepResult{Done: true}, nil
	}
	if err != nil {
		return nil, nil, nil, StepResult{}, err
	}
	requester, err := st.GetUser(ctx, req.FromUserID)
	if err != nil {
		// Fall back to the bare id rather than blocking the notification.
		requester = &store.User{ID: req.FromUserID, Username: req.FromUserID, FullName: "Someone"}
	}
	return req, target, requester, StepResult{}, nil
}
