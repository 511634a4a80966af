package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"labelhub/internal/model"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Progress reports where an annotator stands in a task's queue. Next is
// the sequence position of the earliest pending assignment, or Total+1
// when everything is done; Total counts all assignments for the pair.
type Progress struct {
	Next  int `json:"next"`
	Total int `json:"total"`
}

// RichAssignment is an assignment joined with its document's name, used
// when merging tasks to build the document-name correspondence.
type RichAssignment struct {
	model.Assignment
	DocumentName string
}

// SlotBinding describes which user currently fills an annotator slot.
// Mixed is set when the slot's assignments are bound to more than one
// user, which happens when a reassignment was interrupted mid-slot.
type SlotBinding struct {
	AnnotatorNumber int
	Email           string
	Mixed           bool
}

type AssignmentRepository struct {
	db *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create adds a new assignment to the database
func (r *AssignmentRepository) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

// CreateAll inserts a batch of assignments
func (r *AssignmentRepository) CreateAll(ctx context.Context, assignments []*model.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(assignments).Error
}

// GetByID retrieves an assignment by its ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	result := r.db.WithContext(ctx).First(&assignment, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, result.Error
	}
	return &assignment, nil
}

// GetByTaskID retrieves all assignments in a task, slot-major then by
// sequence position.
func (r *AssignmentRepository) GetByTaskID(ctx context.Context, taskID uuid.UUID) ([]model.Assignment, error) {
	var assignments []model.Assignment
	result := r.db.WithContext(ctx).
		Where("task_id = ?", taskID).
		Order("annotator_number").Order("seq_pos").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	return assignments, nil
}

// GetByTaskAndSlot retrieves the assignments bound to one annotator
// slot within a task.
func (r *AssignmentRepository) GetByTaskAndSlot(ctx context.Context, taskID uuid.UUID, annotatorNumber int) ([]model.Assignment, error) {
	var assignments []model.Assignment
	result := r.db.WithContext(ctx).
		Where("task_id = ? AND annotator_number = ?", taskID, annotatorNumber).
		Order("seq_pos").
		Find(&assignments)
	if result.Error != nil {
		return nil, result.Error
	}
	return assignments, nil
}

// GetRichByTaskID retrieves a task's assignments joined with their
// document names.
func (r *AssignmentRepository) GetRichByTaskID(ctx context.Context, taskID uuid.UUID) ([]RichAssignment, error) {
	var rows []RichAssignment
	result := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Select("assignments.*, documents.name AS document_name").
		Joins("JOIN documents ON documents.id = assignments.document_id").
		Where("assignments.task_id = ?", taskID).
		Order("assignments.annotator_number").Order("assignments.seq_pos").
		Scan(&rows)
	if result.Error != nil {
		return nil, result.Error
	}
	return rows, nil
}

// Slots returns the annotator slots of a task with the email of the
// user currently bound to each, exactly one row per slot number,
// ordered by slot number. Slots whose annotator is unbound come back
// with an empty email. A slot whose assignments are split across users
// reports the lowest email and is marked Mixed, so its row still lines
// up with the slot, not with either binding.
func (r *AssignmentRepository) Slots(ctx context.Context, taskID uuid.UUID) ([]SlotBinding, error) {
	var slots []SlotBinding
	result := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Select("assignments.annotator_number, MIN(COALESCE(users.email, '')) AS email, COUNT(DISTINCT assignments.annotator_id) > 1 AS mixed").
		Joins("LEFT JOIN users ON users.id = assignments.annotator_id").
		Where("assignments.task_id = ?", taskID).
		Group("assignments.annotator_number").
		Order("assignments.annotator_number").
		Scan(&slots)
	if result.Error != nil {
		return nil, result.Error
	}
	return slots, nil
}

// NextForUserAndTask returns the annotator's next pending assignment in
// the task: the pending assignment with the lowest sequence position.
// Returns ErrAssignmentNotFound when nothing is pending.
func (r *AssignmentRepository) NextForUserAndTask(ctx context.Context, annotatorID, taskID uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	result := r.db.WithContext(ctx).
		Where("annotator_id = ? AND task_id = ? AND status = ?", annotatorID, taskID, model.StatusPending).
		Order("seq_pos").
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, result.Error
	}
	return &assignment, nil
}

// NextForUser returns the annotator's globally next pending assignment
// across all tasks, newest task first, then by sequence position.
// Returns (nil, nil) when the annotator has no pending work.
func (r *AssignmentRepository) NextForUser(ctx context.Context, annotatorID uuid.UUID) (*model.Assignment, error) {
	var assignment model.Assignment
	result := r.db.WithContext(ctx).
		Where("annotator_id = ? AND status = ?", annotatorID, model.StatusPending).
		Order("task_id DESC").Order("seq_pos").
		First(&assignment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &assignment, nil
}

// Progress reports the annotator's position within a task. Read-only:
// sequence positions are fixed at creation and never renumbered, so
// "next" is always derived by filtering on status.
func (r *AssignmentRepository) Progress(ctx context.Context, annotatorID, taskID uuid.UUID) (*Progress, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("annotator_id = ? AND task_id = ?", annotatorID, taskID).
		Count(&total).Error
	if err != nil {
		return nil, err
	}

	if total == 0 {
		return &Progress{Next: 1, Total: 0}, nil
	}

	var next model.Assignment
	err = r.db.WithContext(ctx).
		Where("annotator_id = ? AND task_id = ? AND status = ?", annotatorID, taskID, model.StatusPending).
		Order("seq_pos").
		First(&next).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Every assignment is done; signal "past the end".
		return &Progress{Next: int(total) + 1, Total: int(total)}, nil
	}
	if err != nil {
		return nil, err
	}

	return &Progress{Next: next.SeqPos, Total: int(total)}, nil
}

// Rebind points a single assignment at a different annotator identity.
// The slot number and sequence position stay untouched.
func (r *AssignmentRepository) Rebind(ctx context.Context, assignmentID, annotatorID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ?", assignmentID).
		Update("annotator_id", annotatorID)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}

// MarkDone flips an assignment's status to done
func (r *AssignmentRepository) MarkDone(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Assignment{}).
		Where("id = ?", id).
		Update("status", model.StatusDone)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssignmentNotFound
	}
	return nil
}
