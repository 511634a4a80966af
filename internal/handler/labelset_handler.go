package handler

import (
	"errors"
	"net/http"

	"labelhub/internal/middleware"
	"labelhub/internal/model"
	"labelhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type LabelsetHandler struct {
	labelsetRepo *repository.LabelsetRepository
	projectRepo  *repository.ProjectRepository
	shareRepo    *repository.ProjectShareRepository
}

func NewLabelsetHandler(
	labelsetRepo *repository.LabelsetRepository,
	projectRepo *repository.ProjectRepository,
	shareRepo *repository.ProjectShareRepository,
) *LabelsetHandler {
	return &LabelsetHandler{
		labelsetRepo: labelsetRepo,
		projectRepo:  projectRepo,
		shareRepo:    shareRepo,
	}
}

type CreateLabelsetRequest struct {
	ProjectID string   `json:"project_id" binding:"required,uuid"`
	Name      string   `json:"name" binding:"required"`
	Labels    []string `json:"labels" binding:"required,min=1"`
}

type LabelsetResponse struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	Labels    []string `json:"labels"`
}

// Create creates a new labelset in a project
func (h *LabelsetHandler) Create(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	authenticatedUserID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	var req CreateLabelsetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	hasAccess, err := h.shareRepo.CheckAccess(c.Request.Context(), projectID, authenticatedUserID, model.RoleEditor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !hasAccess {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to create labelsets in this project"})
		return
	}

	labelset := &model.Labelset{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      req.Name,
		Labels:    req.Labels,
	}

	if err := h.labelsetRepo.Create(c.Request.Context(), labelset); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create labelset"})
		return
	}

	c.JSON(http.StatusCreated, LabelsetResponse{
		ID:        labelset.ID.String(),
		ProjectID: labelset.ProjectID.String(),
		Name:      labelset.Name,
		Labels:    labelset.Labels,
	})
}

// GetByID retrieves a labelset
func (h *LabelsetHandler) GetByID(c *gin.Context) {
	labelsetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid labelset ID format"})
		return
	}

	labelset, err := h.labelsetRepo.GetByID(c.Request.Context(), labelsetID)
	if err != nil {
		if errors.Is(err, repository.ErrLabelsetNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Labelset not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve labelset"})
		return
	}

	c.JSON(http.StatusOK, LabelsetResponse{
		ID:        labelset.ID.String(),
		ProjectID: labelset.ProjectID.String(),
		Name:      labelset.Name,
		Labels:    labelset.Labels,
	})
}

// GetByProjectID lists the labelsets of a project
func (h *LabelsetHandler) GetByProjectID(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	labelsets, err := h.labelsetRepo.GetByProjectID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve labelsets"})
		return
	}

	resp := make([]LabelsetResponse, 0, len(labelsets))
	for _, labelset := range labelsets {
		resp = append(resp, LabelsetResponse{
			ID:        labelset.ID.String(),
			ProjectID: labelset.ProjectID.String(),
			Name:      labelset.Name,
			Labels:    labelset.Labels,
		})
	}

	c.JSON(http.StatusOK, resp)
}
