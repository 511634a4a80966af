package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"labelhub/internal/model"
)

type RelationRepository struct {
	db *gorm.DB
}

func NewRelationRepository(db *gorm.DB) *RelationRepository {
	return &RelationRepository{db: db}
}

// Create adds a new relation to the database
func (r *RelationRepository) Create(ctx context.Context, relation *model.Relation) error {
	return r.db.WithContext(ctx).Create(relation).Error
}

// CreateAll inserts a batch of relations
func (r *RelationRepository) CreateAll(ctx context.Context, relations []*model.Relation) error {
	if len(relations) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(relations).Error
}

// GetByAnnotationIDs retrieves the relations touching any of the given
// annotations, on either end.
func (r *RelationRepository) GetByAnnotationIDs(ctx context.Context, annotationIDs []uuid.UUID) ([]model.Relation, error) {
	if len(annotationIDs) == 0 {
		return nil, nil
	}
	var relations []model.Relation
	result := r.db.WithContext(ctx).
		Where("from_id IN ? OR to_id IN ?", annotationIDs, annotationIDs).
		Find(&relations)
	if result.Error != nil {
		return nil, result.Error
	}
	return relations, nil
}

// Delete removes a relation by its ID
func (r *RelationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Relation{}, "id = ?", id).Error
}
