// Package workflow implements durable multi-step workflow runs: execute a
// step, persist a checkpoint, suspend until a wall-clock deadline, resume.
// Suspension is never an in-memory timer; a run parked in the store survives
// process restarts and is re-driven by the scheduler's poll loop.
package workflow

import (
	"context"
	"time"

	"github.com/Krishhhhhhhhhhhh/social-media/internal/store"
)

// StepResult tells the scheduler what to do after a step succeeds.
type StepResult struct {
	// Suspend parks the run durably for this long before the next step.
	// Zero means the next step runs on the same pass.
	Suspend time.Duration
	// Done completes the run immediately, skipping any remaining steps
	// (short-circuit).
	Done bool
}

// Step is one unit of a workflow. Run must be safe to retry: the scheduler
// re-executes a step whose earlier attempt failed or was interrupted, using
// (run id, step index) as the idempotence key.
type Step struct {
	Name string
	Run  func(ctx context.Context, run *store.WorkflowRun) (StepResult, error)
}

// Workflow is a named, ordered list of steps. One run executes the steps in
// order; step N never executes before step N-1 completed.
type Workflow struct {
	Name  string
	Steps []Step
}
