package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"labelhub/internal/model"
)

var (
	ErrAnnotationNotFound = errors.New("annotation not found")
)

type AnnotationRepository struct {
	db *gorm.DB
}

func NewAnnotationRepository(db *gorm.DB) *AnnotationRepository {
	return &AnnotationRepository{db: db}
}

// Create adds a new annotation to the database
func (r *AnnotationRepository) Create(ctx context.Context, annotation *model.Annotation) error {
	return r.db.WithContext(ctx).Create(annotation).Error
}

// CreateAll inserts a batch of annotations
func (r *AnnotationRepository) CreateAll(ctx context.Context, annotations []*model.Annotation) error {
	if len(annotations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(annotations).Error
}

// GetByID retrieves an annotation by its ID
func (r *AnnotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Annotation, error) {
	var annotation model.Annotation
	result := r.db.WithContext(ctx).First(&annotation, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrAnnotationNotFound
		}
		return nil, result.Error
	}
	return &annotation, nil
}

// GetByAssignmentID retrieves all annotations on an assignment
func (r *AnnotationRepository) GetByAssignmentID(ctx context.Context, assignmentID uuid.UUID) ([]model.Annotation, error) {
	var annotations []model.Annotation
	result := r.db.WithContext(ctx).Where("assignment_id = ?", assignmentID).Find(&annotations)
	if result.Error != nil {
		return nil, result.Error
	}
	return annotations, nil
}

// GetByAssignmentIDs retrieves the annotations of a batch of assignments
func (r *AnnotationRepository) GetByAssignmentIDs(ctx context.Context, assignmentIDs []uuid.UUID) ([]model.Annotation, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	var annotations []model.Annotation
	result := r.db.WithContext(ctx).Where("assignment_id IN ?", assignmentIDs).Find(&annotations)
	if result.Error != nil {
		return nil, result.Error
	}
	return annotations, nil
}

// Delete removes an annotation by its ID
func (r *AnnotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Annotation{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAnnotationNotFound
	}
	return nil
}
