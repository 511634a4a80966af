package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"labelhub/internal/model"
	"labelhub/internal/repository"
)

// Remapper produces a structural copy of a task's dependency graph
// (assignments, then annotations, then relations) under a new owning
// task. Each stage fully populates its old-id to new-id map before the
// next stage starts, because relations may reference annotations
// created in the same batch. External references (document, label)
// stay untouched.
//
// A Remapper is built over the caller's transaction handle so a failed
// stage aborts the whole copy.
type Remapper struct {
	assignments *repository.AssignmentRepository
	annotations *repository.AnnotationRepository
	relations   *repository.RelationRepository
}

func NewRemapper(tx *gorm.DB) *Remapper {
	return &Remapper{
		assignments: repository.NewAssignmentRepository(tx),
		annotations: repository.NewAnnotationRepository(tx),
		relations:   repository.NewRelationRepository(tx),
	}
}

// CopyAssignments copies every assignment of sourceTaskID under
// targetTaskID, preserving slot numbers, sequence positions, status,
// difficulty and origin. Returns the old-id to new-id map.
func (m *Remapper) CopyAssignments(ctx context.Context, sourceTaskID, targetTaskID uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	originals, err := m.assignments.GetByTaskID(ctx, sourceTaskID)
	if err != nil {
		return nil, fmt.Errorf("copy assignments: fetch source: %w", err)
	}

	idMap := make(map[uuid.UUID]uuid.UUID, len(originals))
	copies := make([]*model.Assignment, 0, len(originals))
	for _, original := range originals {
		replica := original
		replica.ID = uuid.New()
		replica.TaskID = targetTaskID
		idMap[original.ID] = replica.ID
		copies = append(copies, &replica)
	}

	if err := m.assignments.CreateAll(ctx, copies); err != nil {
		return nil, fmt.Errorf("copy assignments: insert: %w", err)
	}

	return idMap, nil
}

// CopyAnnotations copies the annotations of every assignment in
// assignmentMap, re-pointing each copy at the new owning assignment.
// Returns the old-id to new-id map.
func (m *Remapper) CopyAnnotations(ctx context.Context, assignmentMap map[uuid.UUID]uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	oldIDs := make([]uuid.UUID, 0, len(assignmentMap))
	for oldID := range assignmentMap {
		oldIDs = append(oldIDs, oldID)
	}

	originals, err := m.annotations.GetByAssignmentIDs(ctx, oldIDs)
	if err != nil {
		return nil, fmt.Errorf("copy annotations: fetch source: %w", err)
	}

	idMap := make(map[uuid.UUID]uuid.UUID, len(originals))
	copies := make([]*model.Annotation, 0, len(originals))
	for _, original := range originals {
		newAssignmentID, ok := assignmentMap[original.AssignmentID]
		if !ok {
			return nil, fmt.Errorf("copy annotations: annotation %s references assignment %s outside the copied set", original.ID, original.AssignmentID)
		}
		replica := original
		replica.ID = uuid.New()
		replica.AssignmentID = newAssignmentID
		idMap[original.ID] = replica.ID
		copies = append(copies, &replica)
	}

	if err := m.annotations.CreateAll(ctx, copies); err != nil {
		return nil, fmt.Errorf("copy annotations: insert: %w", err)
	}

	return idMap, nil
}

// CopyRelations copies the relations between the annotations in
// annotationMap, resolving both endpoints through the map. A relation
// with an endpoint outside the copied set breaks referential integrity
// and fails the whole copy.
func (m *Remapper) CopyRelations(ctx context.Context, annotationMap map[uuid.UUID]uuid.UUID) ([]*model.Relation, error) {
	oldIDs := make([]uuid.UUID, 0, len(annotationMap))
	for oldID := range annotationMap {
		oldIDs = append(oldIDs, oldID)
	}

	originals, err := m.relations.GetByAnnotationIDs(ctx, oldIDs)
	if err != nil {
		return nil, fmt.Errorf("copy relations: fetch source: %w", err)
	}

	copies := make([]*model.Relation, 0, len(originals))
	for _, original := range originals {
		newFromID, ok := annotationMap[original.FromID]
		if !ok {
			return nil, fmt.Errorf("copy relations: relation %s references annotation %s outside the copied set", original.ID, original.FromID)
		}
		newToID, ok := annotationMap[original.ToID]
		if !ok {
			return nil, fmt.Errorf("copy relations: relation %s references annotation %s outside the copied set", original.ID, original.ToID)
		}
		replica := original
		replica.ID = uuid.New()
		replica.FromID = newFromID
		replica.ToID = newToID
		copies = append(copies, &replica)
	}

	if err := m.relations.CreateAll(ctx, copies); err != nil {
		return nil, fmt.Errorf("copy relations: insert: %w", err)
	}

	return copies, nil
}
