package repository

import (
	"context"
	"errors"

	"labelhub/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectShareRepository struct {
	db *gorm.DB
}

func NewProjectShareRepository(db *gorm.DB) *ProjectShareRepository {
	return &ProjectShareRepository{db: db}
}

// Share grants a user a role on a project, upgrading the role if a
// grant already exists.
func (r *ProjectShareRepository) Share(ctx context.Context, projectID, userID uuid.UUID, role string) error {
	share := model.ProjectShare{
		ProjectID: projectID,
		UserID:    userID,
		Role:      role,
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.ProjectShare
		err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).First(&existing).Error

		if err == nil {
			existing.Role = role
			return tx.Save(&existing).Error
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return tx.Create(&share).Error
	})
}

// RemoveShare revokes a user's access to a project
func (r *ProjectShareRepository) RemoveShare(ctx context.Context, projectID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&model.ProjectShare{}).Error
}

// GetProjectShares returns the users with access to a project
func (r *ProjectShareRepository) GetProjectShares(ctx context.Context, projectID uuid.UUID) ([]model.ProjectShare, error) {
	var shares []model.ProjectShare

	err := r.db.WithContext(ctx).
		Preload("User").
		Where("project_id = ?", projectID).
		Find(&shares).Error

	return shares, err
}

// GetUserRole returns the user's role on a project, or an empty string
// when the user has no access.
func (r *ProjectShareRepository) GetUserRole(ctx context.Context, projectID, userID uuid.UUID) (string, error) {
	var share model.ProjectShare

	err := r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&share).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}

	if err != nil {
		return "", err
	}

	return share.Role, nil
}

// CheckAccess reports whether the user holds the required role (or a
// stronger one) on the project. The owner always has full access.
func (r *ProjectShareRepository) CheckAccess(ctx context.Context, projectID, userID uuid.UUID, requiredRole string) (bool, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", projectID, userID).
		First(&project).Error

	if err == nil {
		return true, nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	var share model.ProjectShare
	err = r.db.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&share).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	// Any role satisfies "annotator"; "editor" requires the editor role.
	if requiredRole == model.RoleAnnotator {
		return true, nil
	}

	return share.Role == model.RoleEditor, nil
}
