package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/logging"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/metrics"
	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
)

// RunStore is the slice of the document store the scheduler needs. Every
// checkpoint is a single-document write.
type RunStore interface {
	CreateWorkflowRun(ctx context.Context, r *store.WorkflowRun) error
	UpdateWorkflowRun(ctx context.Context, r *store.WorkflowRun) error
	DueWorkflowRuns(ctx context.Context, now time.Time, grace time.Duration) ([]store.WorkflowRun, error)
}

// Scheduler drives workflow runs: Trigger creates a run and executes it up
// to its first suspension; the poll loop picks up runs whose deadline has
// passed (or which a crash left mid-step) and drives them further. Step
// execution happens on whichever pass resumes the run; nothing is kept in
// memory between suspension and resumption.
type Scheduler struct {
	store        RunStore
	workflows    map[string]*Workflow
	pollInterval time.Duration
	grace        time.Duration
	quit         chan struct{}
	wg           sync.WaitGroup   // tracks active passes
	passMu       sync.Mutex       // serializes passes: a due run is driven by at most one pass at a time
	cancel       func()           // cancel function for active context (set at Start)
	Now          func() time.Time // injectable clock for testing
	NewID        func() string
}

// NewScheduler creates a scheduler over the given run store. grace is how
// long a run may sit in "running" before it is considered interrupted.
func NewScheduler(st RunStore, pollInterval, grace time.Duration) *Scheduler {
	return &Scheduler{
		store:        st,
		workflows:    make(map[string]*Workflow),
		pollInterval: pollInterval,
		grace:        grace,
		quit:         make(chan struct{}),
		Now:          time.Now,
		NewID:        uuid.NewString,
	}
}

// Register makes a workflow definition available to Trigger and the poll
// loop. Definitions are registered once at startup, before Start.
func (s *Scheduler) Register(wf *Workflow) {
	s.workflows[wf.Name] = wf
}

// Trigger creates a run for the named workflow and drives it up to its
// first suspension point. The run checkpoint is durable before any step
// executes, so a crash mid-step leaves a resumable record rather than a
// lost event.
func (s *Scheduler) Trigger(ctx context.Context, workflowName, subjectID string) (*store.WorkflowRun, error) {
	if _, ok := s.workflows[workflowName]; !ok {
		return nil, fmt.Errorf("unknown workflow %q", workflowName)
	}
	now := s.Now().UTC()
	run := &store.WorkflowRun{
		ID:        s.NewID(),
		Workflow:  workflowName,
		SubjectID: subjectID,
		StepIndex: 0,
		State:     store.RunRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateWorkflowRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create workflow run: %w", err)
	}
	metrics.IncRunStarted()
	logging.Get().Info().Str("workflow", workflowName).Str("subject", subjectID).Str("run", run.ID).Msg("workflow run triggered")
	s.advance(ctx, run)
	return run, nil
}

// Start runs the main polling loop
func (s *Scheduler) Start() {
	logging.Get().Info().Dur("interval", s.pollInterval).Msg("starting workflow scheduler")
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Recovery pass before the ticker: resumes runs that were suspended
	// (or interrupted mid-step) when the previous process died. Runs
	// synchronously so it can never overlap a ticker pass.
	s.wg.Add(1)
	s.once(ctx)
	s.wg.Done()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.wg.Add(1)
			s.once(ctx)
			s.wg.Done()
		case <-s.quit:
			logging.Get().Info().Msg("stopping workflow scheduler")
			return
		}
	}
}

// Stop signals the scheduler to stop and waits for the active pass to finish
func (s *Scheduler) Stop(ctx context.Context) {
	if s.cancel != nil {
		s.cancel()
	}
	close(s.quit)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Get().Info().Msg("scheduler pass completed")
	case <-ctx.Done():
		logging.Get().Warn().Msg("shutdown timeout exceeded, a scheduler pass may be incomplete")
	}
}

// RunOnce runs a single scheduling pass (public wrapper for tests / CLI)
func (s *Scheduler) RunOnce() {
	s.once(context.Background())
}

// once runs one scheduling pass over all due runs. Passes are serialized:
// overlapping scans of the same due set would execute a run's current step
// twice before either persisted a checkpoint.
func (s *Scheduler) once(ctx context.Context) {
	s.passMu.Lock()
	defer s.passMu.Unlock()
	now := s.Now().UTC()
	due, err := s.store.DueWorkflowRuns(ctx, now, s.grace)
	if err != nil {
		logging.Get().Error().Err(err).Msg("failed listing due workflow runs")
		return
	}
	if len(due) > 0 {
		logging.Get().Info().Int("due", len(due)).Msg("resuming due workflow runs")
	}
	for i := range due {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.advance(ctx, &due[i])
	}
	metrics.SetLastPoll(now)
}

// advance drives a run forward until it suspends, completes, or a step
// fails. On failure the checkpoint is left untouched: the run stays due and
// the next pass retries the same step.
func (s *Scheduler) advance(ctx context.Context, run *store.WorkflowRun) {
	wf, ok := s.workflows[run.Workflow]
	if !ok {
		logging.Get().Error().Str("workflow", run.Workflow).Str("run", run.ID).Msg("run references unregistered workflow")
		return
	}
	for run.StepIndex < len(wf.Steps) {
		step := wf.Steps[run.StepIndex]
		start := s.Now()
		res, err := step.Run(ctx, run)
		metrics.ObserveStepDuration(s.Now().Sub(start).Seconds())
		if err != nil {
			logging.Get().Warn().Err(err).Str("run", run.ID).Str("step", step.Name).Msg("workflow step failed; will retry")
			metrics.IncStepFailed()
			return
		}
		if res.Done {
			break
		}
		run.StepIndex++
		if res.Suspend > 0 && run.StepIndex < len(wf.Steps) {
			at := s.Now().UTC().Add(res.Suspend)
			run.State = store.RunSuspended
			run.ResumeAt = &at
			if err := s.store.UpdateWorkflowRun(ctx, run); err != nil {
				logging.Get().Error().Err(err).Str("run", run.ID).Msg("failed persisting suspension checkpoint")
				return
			}
			logging.Get().Info().Str("run", run.ID).Str("step", step.Name).Time("resume_at", at).Msg("workflow run suspended")
			return
		}
		// checkpoint between consecutive steps
		run.State = store.RunRunning
		run.ResumeAt = nil
		if err := s.store.UpdateWorkflowRun(ctx, run); err != nil {
			logging.Get().Error().Err(err).Str("run", run.ID).Msg("failed persisting step checkpoint")
			return
		}
	}
	run.State = store.RunCompleted
	run.ResumeAt = nil
	if err := s.store.UpdateWorkflowRun(ctx, run); err != nil {
		logging.Get().Error().Err(err).Str("run", run.ID).Msg("failed persisting completion")
		return
	}
	logging.Get().Info().Str("run", run.ID).Str("workflow", run.Workflow).Msg("workflow run completed")
}
