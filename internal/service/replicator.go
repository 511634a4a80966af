package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"labelhub/internal/model"
	"labelhub/internal/repository"
)

// Replicator clones and merges whole tasks. Every composite write runs
// inside a single transaction so a failed stage never leaves a
// partially populated task behind.
type Replicator struct {
	db *gorm.DB
}

func NewReplicator(db *gorm.DB) *Replicator {
	return &Replicator{db: db}
}

// Replicate deep-copies a task: the task row itself, then its
// assignments, annotations and relations with all internal references
// remapped onto the new siblings. Slot numbers, sequence positions,
// statuses, ratings and origins are preserved; this is a structural
// copy, not a reset to pending.
func (s *Replicator) Replicate(ctx context.Context, taskID uuid.UUID) (*model.Task, error) {
	var replica *model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		replica, err = s.replicate(ctx, tx, taskID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("replicate task %s: %w", taskID, err)
	}

	logrus.WithFields(logrus.Fields{
		"source_task": taskID,
		"new_task":    replica.ID,
	}).Info("task replicated")

	return replica, nil
}

func (s *Replicator) replicate(ctx context.Context, tx *gorm.DB, taskID uuid.UUID) (*model.Task, error) {
	tasks := repository.NewTaskRepository(tx)

	source, err := tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	replica := &model.Task{
		ID:          uuid.New(),
		ProjectID:   source.ProjectID,
		Name:        source.Name,
		Description: source.Description,
		LabelsetID:  source.LabelsetID,
		Level:       source.Level,
		Guidelines:  source.Guidelines,
		ModelRef:    source.ModelRef,
	}
	if err := tasks.Create(ctx, replica); err != nil {
		return nil, err
	}

	remapper := NewRemapper(tx)

	assignmentMap, err := remapper.CopyAssignments(ctx, taskID, replica.ID)
	if err != nil {
		return nil, err
	}

	annotationMap, err := remapper.CopyAnnotations(ctx, assignmentMap)
	if err != nil {
		return nil, err
	}

	if _, err := remapper.CopyRelations(ctx, annotationMap); err != nil {
		return nil, err
	}

	return replica, nil
}

// Merge combines two compatible tasks into a fresh one: the original
// task is replicated, then the similar task's assignments are carried
// over with their document references re-pointed through a
// document-name correspondence built from the original's assignments,
// so both halves resolve into the original document identity space.
//
// Annotations and relations of the similar task are not carried over
// yet; only its assignments land in the merged task.
func (s *Replicator) Merge(ctx context.Context, originalID, similarID uuid.UUID) (*model.Task, error) {
	var merged *model.Task
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		merged, err = s.replicate(ctx, tx, originalID)
		if err != nil {
			return err
		}

		assignments := repository.NewAssignmentRepository(tx)

		originalRows, err := assignments.GetRichByTaskID(ctx, originalID)
		if err != nil {
			return err
		}

		// Document identity is keyed by name: when both tasks annotate a
		// document with the same name, the merged half must reference the
		// original's row.
		docByName := make(map[string]uuid.UUID, len(originalRows))
		for _, row := range originalRows {
			docByName[row.DocumentName] = row.DocumentID
		}

		similarRows, err := assignments.GetRichByTaskID(ctx, similarID)
		if err != nil {
			return err
		}

		carried := make([]*model.Assignment, 0, len(similarRows))
		for _, row := range similarRows {
			assignment := row.Assignment
			assignment.ID = uuid.New()
			assignment.TaskID = merged.ID
			if docID, ok := docByName[row.DocumentName]; ok {
				assignment.DocumentID = docID
			}
			carried = append(carried, &assignment)
		}

		return assignments.CreateAll(ctx, carried)
	})
	if err != nil {
		return nil, fmt.Errorf("merge task %s into %s: %w", similarID, originalID, err)
	}

	logrus.WithFields(logrus.Fields{
		"original_task": originalID,
		"similar_task":  similarID,
		"merged_task":   merged.ID,
	}).Info("tasks merged")

	return merged, nil
}
