package workflow

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
)

// reminderFixture backs both the scheduler checkpoints and the request/user
// reads the reminder steps perform.
type reminderFixture struct {
	*memRunStore
	mu       sync.Mutex
	requests map[string]*store.ConnectionRequest
	users    map[string]*store.User
}

func newReminderFixture() *reminderFixture {
	return &reminderFixture{
		memRunStore: newMemRunStore(),
		requests:    make(map[string]*store.ConnectionRequest),
		users:       make(map[string]*store.User),
	}
}

func (f *reminderFixture) GetConnectionRequest(ctx context.Context, id string) (*store.ConnectionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.requests[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, store.ErrNotFound
}

func (f *reminderFixture) GetUser(ctx context.Context, id string) (*store.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *reminderFixture) setStatus(id string, st store.RequestStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests[id].Status = st
}

type recordedSend struct {
	to, subject string
}

type fakeNotifier struct {
	mu    sync.Mutex
	sends []recordedSend
	fail  bool
}

func (n *fakeNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.sends = append(n.sends, recordedSend{to: to, subject: subject})
	return nil
}

func (n *fakeNotifier) sent() []recordedSend {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]recordedSend(nil), n.sends...)
}

const reminderTestDelay = 24 * time.Hour

func newReminderScheduler(f *reminderFixture, n Notifier) *Scheduler {
	s := newTestScheduler(f.memRunStore)
	s.Register(NewConnectionRequestReminder(f, n, reminderTestDelay))
	return s
}

func seedRequest(f *reminderFixture) {
	f.requests["req-1"] = &store.ConnectionRequest{
		ID:         "req-1",
		FromUserID: "alice",
		ToUserID:   "bob",
		Status:     store.StatusPending,
	}
	f.users["alice"] = &store.User{ID: "alice", Username: "alice", FullName: "Alice A", Email: "alice@example.com"}
	f.users["bob"] = &store.User{ID: "bob", Username: "bob", FullName: "Bob B", Email: "bob@example.com"}
}

func TestReminderNotifiesImmediatelyAndSuspends(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	n := &fakeNotifier{}
	s := newReminderScheduler(f, n)

	run, err := s.Trigger(context.Background(), ConnectionRequestReminder, "req-1")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	sends := n.sent()
	if len(sends) != 1 {
		t.Fatalf("expected one immediate notification, got %d", len(sends))
	}
	if sends[0].to != "bob@example.com" {
		t.Fatalf("expected notification to the request target, got %q", sends[0].to)
	}
	if !strings.Contains(sends[0].subject, "Alice A") {
		t.Fatalf("expected requester name in subject, got %q", sends[0].subject)
	}
	saved := f.get(t, run.ID)
	if saved.State != store.RunSuspended {
		t.Fatalf("expected run suspended until the reminder deadline, got %q", saved.State)
	}
	want := s.Now().UTC().Add(reminderTestDelay)
	if saved.ResumeAt == nil || !saved.ResumeAt.Equal(want) {
		t.Fatalf("expected resume_at %v, got %v", want, saved.ResumeAt)
	}
}

func TestReminderSkippedWhenAccepted(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	n := &fakeNotifier{}
	s := newReminderScheduler(f, n)
	run, err := s.Trigger(context.Background(), ConnectionRequestReminder, "req-1")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}

	f.setStatus("req-1", store.StatusAccepted)
	s.Now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 1, 0, time.UTC) }
	s.RunOnce()

	if got := len(n.sent()); got != 1 {
		t.Fatalf("expected no reminder for an accepted request, got %d sends", got)
	}
	if saved := f.get(t, run.ID); saved.State != store.RunCompleted {
		t.Fatalf("expected completed run, got %q", saved.State)
	}
}

func TestReminderSentWhenStillPending(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	n := &fakeNotifier{}
	s := newReminderScheduler(f, n)
	run, err := s.Trigger(context.Background(), ConnectionRequestReminder, "req-1")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}

	s.Now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 1, 0, time.UTC) }
	s.RunOnce()

	sends := n.sent()
	if len(sends) != 2 {
		t.Fatalf("expected initial notification plus one reminder, got %d", len(sends))
	}
	if !strings.Contains(sends[1].subject, "Reminder") {
		t.Fatalf("expected reminder subject, got %q", sends[1].subject)
	}
	if saved := f.get(t, run.ID); saved.State != store.RunCompleted {
		t.Fatalf("expected completed run, got %q", saved.State)
	}

	// A later pass must not produce a second reminder.
	s.RunOnce()
	if got := len(n.sent()); got != 2 {
		t.Fatalf("expected exactly one reminder, got %d sends total", got)
	}
}

func TestReminderRetriesAfterNotifyFailure(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	n := &fakeNotifier{fail: true}
	s := newReminderScheduler(f, n)

	run, err := s.Trigger(context.Background(), ConnectionRequestReminder, "req-1")
	if err != nil {
		t.Fatalf("trigger must succeed even when the notification fails: %v", err)
	}
	saved := f.get(t, run.ID)
	if saved.State != store.RunRunning || saved.StepIndex != 0 {
		t.Fatalf("expected run parked at the failed step, got state=%q index=%d", saved.State, saved.StepIndex)
	}

	// Once the backend recovers, the stalled run is retried from the same step.
	n.mu.Lock()
	n.fail = false
	n.mu.Unlock()
	s.Now = func() time.Time { return time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC) }
	s.RunOnce()
	if got := len(n.sent()); got != 1 {
		t.Fatalf("expected the notification after retry, got %d", got)
	}
	if saved := f.get(t, run.ID); saved.State != store.RunSuspended {
		t.Fatalf("expected run suspended after the retried step, got %q", saved.State)
	}
}

func TestReminderCompletesWhenRequestVanished(t *testing.T) {
	f := newReminderFixture()
	n := &fakeNotifier{}
	s := newReminderScheduler(f, n)

	run, err := s.Trigger(context.Background(), ConnectionRequestReminder, "gone")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if got := len(n.sent()); got != 0 {
		t.Fatalf("expected no notification for a vanished request, got %d", got)
	}
	if saved := f.get(t, run.ID); saved.State != store.RunCompleted {
		t.Fatalf("expected completed run, got %q", saved.State)
	}
}

func TestReminderFallsBackWhenRequesterUnknown(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	delete(f.users, "alice")
	n := &fakeNotifier{}
	s := newReminderScheduler(f, n)

	if _, err := s.Trigger(context.Background(), ConnectionRequestReminder, "req-1"); err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	sends := n.sent()
	if len(sends) != 1 {
		t.Fatalf("expected the notification despite the missing requester, got %d", len(sends))
	}
	if !strings.Contains(sends[0].subject, "Someone") {
		t.Fatalf("expected placeholder requester name, got %q", sends[0].subject)
	}
}

// A suspended run outlives the process that created it: a scheduler built
// fresh over the same store picks it up at its deadline.
func TestReminderSurvivesRestart(t *testing.T) {
	f := newReminderFixture()
	seedRequest(f)
	n := &fakeNotifier{}

	first := newReminderScheduler(f, n)
	run, err := first.Trigger(context.Background(), ConnectionRequestReminder, "req-1")
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}

	second := newReminderScheduler(f, n)
	second.Now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 1, 0, time.UTC) }
	second.RunOnce()

	sends := n.sent()
	if len(sends) != 2 {
		t.Fatalf("expected the reminder from the new process, got %d sends", len(sends))
	}
	if saved := f.get(t, run.ID); saved.State != store.RunCompleted {
		t.Fatalf("expected completed run, got %q", saved.State)
	}
}
