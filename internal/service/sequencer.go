package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"labelhub/internal/model"
	"labelhub/internal/repository"
)

// Sequencer decides which assignment an annotator should work on next.
// "Next" is always derived by filtering pending rows on their fixed
// sequence positions, never by renumbering, so concurrent annotators
// cannot interfere with each other's queues.
type Sequencer struct {
	assignments *repository.AssignmentRepository
}

func NewSequencer(assignments *repository.AssignmentRepository) *Sequencer {
	return &Sequencer{assignments: assignments}
}

// NextForUserAndTask returns the annotator's next pending assignment in
// the task: lowest sequence position wins. Returns
// repository.ErrAssignmentNotFound when nothing is pending.
func (s *Sequencer) NextForUserAndTask(ctx context.Context, annotatorID, taskID uuid.UUID) (*model.Assignment, error) {
	assignment, err := s.assignments.NextForUserAndTask(ctx, annotatorID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("next assignment for user %s in task %s: %w", annotatorID, taskID, err)
	}
	return assignment, nil
}

// NextForUser returns the annotator's globally next pending assignment
// across all their tasks, or nil when they have no pending work.
func (s *Sequencer) NextForUser(ctx context.Context, annotatorID uuid.UUID) (*model.Assignment, error) {
	assignment, err := s.assignments.NextForUser(ctx, annotatorID)
	if err != nil {
		return nil, fmt.Errorf("next assignment for user %s: %w", annotatorID, err)
	}
	return assignment, nil
}

// Progress reports {next, total} for the annotator in the task.
func (s *Sequencer) Progress(ctx context.Context, annotatorID, taskID uuid.UUID) (*repository.Progress, error) {
	progress, err := s.assignments.Progress(ctx, annotatorID, taskID)
	if err != nil {
		return nil, fmt.Errorf("progress for user %s in task %s: %w", annotatorID, taskID, err)
	}
	return progress, nil
}
