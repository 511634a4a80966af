package handler

import (
	"net/http"

	"labelhub/internal/cache"
	"labelhub/internal/middleware"
	"labelhub/internal/model"
	"labelhub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type DocumentHandler struct {
	documentRepo *repository.DocumentRepository
	shareRepo    *repository.ProjectShareRepository
	docCache     *cache.DocumentCache
}

func NewDocumentHandler(
	documentRepo *repository.DocumentRepository,
	shareRepo *repository.ProjectShareRepository,
	docCache *cache.DocumentCache,
) *DocumentHandler {
	return &DocumentHandler{
		documentRepo: documentRepo,
		shareRepo:    shareRepo,
		docCache:     docCache,
	}
}

type CreateDocumentRequest struct {
	ProjectID string `json:"project_id" binding:"required,uuid"`
	Name      string `json:"name" binding:"required"`
	Text      string `json:"text" binding:"required"`
}

type DocumentResponse struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Text      string `json:"text"`
}

// Create uploads a new document into a project. Documents are
// immutable once created.
func (h *DocumentHandler) Create(c *gin.Context) {
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

	var req CreateDocumentRequest
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to upload documents to this project"})
		return
	}

	document := &model.Document{
		ID:        uuid.New(),
		ProjectID: projectID,
		Name:      req.Name,
		Text:      req.Text,
	}

	if err := h.documentRepo.Create(c.Request.Context(), document); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, DocumentResponse{
		ID:        document.ID.String(),
		ProjectID: document.ProjectID.String(),
		Name:      document.Name,
		Text:      document.Text,
	})
}

// GetByID retrieves a document, read-through the cache. Document text
// is hot during annotation sessions and never changes, so a cache miss
// populates the entry for the next annotator.
func (h *DocumentHandler) GetByID(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID format"})
		return
	}

	document, err := h.docCache.Get(c.Request.Context(), documentID)
	if err != nil {
		// A cache failure is not a request failure; fall through to the
		// database.
		logrus.WithError(err).Warn("document cache read failed")
		document = nil
	}

	if document == nil {
		document, err = h.documentRepo.GetByID(c.Request.Context(), documentID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve document"})
			return
		}
		if document == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}

		if err := h.docCache.Set(c.Request.Context(), document); err != nil {
			logrus.WithError(err).Warn("document cache write failed")
		}
	}

	c.JSON(http.StatusOK, DocumentResponse{
		ID:        document.ID.String(),
		ProjectID: document.ProjectID.String(),
		Name:      document.Name,
		Text:      document.Text,
	})
}

// GetByProjectID lists the documents of a project
func (h *DocumentHandler) GetByProjectID(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	documents, err := h.documentRepo.GetByProjectID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve documents"})
		return
	}

	resp := make([]DocumentResponse, 0, len(documents))
	for _, document := range documents {
		resp = append(resp, DocumentResponse{
			ID:        document.ID.String(),
			ProjectID: document.ProjectID.String(),
			Name:      document.Name,
			Text:      document.Text,
		})
	}

	c.JSON(http.StatusOK, resp)
}
