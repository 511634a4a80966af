package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"labelhub/internal/model"
)

type LabelsetRepository struct {
	db *gorm.DB
}

func NewLabelsetRepository(db *gorm.DB) *LabelsetRepository {
	return &LabelsetRepository{db: db}
}

// Create adds a new labelset to the database
func (r *LabelsetRepository) Create(ctx context.Context, labelset *model.Labelset) error {
	return r.db.WithContext(ctx).Create(labelset).Error
}

// GetByID retrieves a labelset by its ID
func (r *LabelsetRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Labelset, error) {
	var labelset model.Labelset
	result := r.db.WithContext(ctx).First(&labelset, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrLabelsetNotFound
		}
		return nil, result.Error
	}
	return &labelset, nil
}

// GetByProjectID retrieves all labelsets for a specific project
func (r *LabelsetRepository) GetByProjectID(ctx context.Context, projectID uuid.UUID) ([]model.Labelset, error) {
	var labelsets []model.Labelset
	result := r.db.WithContext(ctx).Where("project_id = ?", projectID).Find(&labelsets)
	if result.Error != nil {
		return nil, result.Error
	}
	return labelsets, nil
}

// Update updates an existing labelset
func (r *LabelsetRepository) Update(ctx context.Context, labelset *model.Labelset) error {
	result := r.db.WithContext(ctx).Save(labelset)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLabelsetNotFound
	}
	return nil
}

// Delete removes a labelset by its ID
func (r *LabelsetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Labelset{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLabelsetNotFound
	}
	return nil
}
