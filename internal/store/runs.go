package store

import (
	"context"
	"time"
)

// CreateWorkflowRun persists a new run checkpoint.
func (s *Store) CreateWorkflowRun(ctx context.Context, r *WorkflowRun) error {
	return s.db.WithContext(ctx).Create(r).Error
}

// GetWorkflowRun retrieves a run by id.
func (s *Store) GetWorkflowRun(ctx context.Context, id string) (*WorkflowRun, error) {
	var r WorkflowRun
	if err := s.db.WithContext(ctx).First(&r, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &r, nil
}

// UpdateWorkflowRun saves the full run checkpoint.
func (s *Store) UpdateWorkflowRun(ctx context.Context, r *WorkflowRun) error {
	return s.db.WithContext(ctx).Save(r).Error
}

// DueWorkflowRuns returns runs the scheduler should drive on this pass:
// suspended runs whose deadline has passed, and runs stuck in "running"
// longer than the grace period (interrupted by a crash mid-step).
func (s *Store) DueWorkflowRuns(ctx context.Context, now time.Time, grace time.Duration) ([]WorkflowRun, error) {
	var out []WorkflowRun
	stalledBefore := now.Add(-grace)
	err := s.db.WithContext(ctx).
		Where("(state = ? AND resume_at <= ?) OR (state = ? AND updated_at <= ?)",
			RunSuspended, now, RunRunning, stalledBefore).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
