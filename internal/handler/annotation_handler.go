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

type AnnotationHandler struct {
	annotationRepo *repository.AnnotationRepository
	relationRepo   *repository.RelationRepository
	assignmentRepo *repository.AssignmentRepository
}

func NewAnnotationHandler(
	annotationRepo *repository.AnnotationRepository,
	relationRepo *repository.RelationRepository,
	assignmentRepo *repository.AssignmentRepository,
) *AnnotationHandler {
	return &AnnotationHandler{
		annotationRepo: annotationRepo,
		relationRepo:   relationRepo,
		assignmentRepo: assignmentRepo,
	}
}

type CreateAnnotationRequest struct {
	Label      string  `json:"label" binding:"required"`
	Start      *int    `json:"start"`
	End        *int    `json:"end"`
	Text       string  `json:"text"`
	LsID       string  `json:"ls_id"`
	Confidence float64 `json:"confidence"`
	Origin     string  `json:"origin" binding:"omitempty,oneof=manual imported"`
}

type AnnotationResponse struct {
	ID           string  `json:"id"`
	AssignmentID string  `json:"assignment_id"`
	Label        string  `json:"label"`
	Start        *int    `json:"start,omitempty"`
	End          *int    `json:"end,omitempty"`
	Text         string  `json:"text"`
	LsID         string  `json:"ls_id"`
	Confidence   float64 `json:"confidence"`
	Origin       string  `json:"origin"`
}

type CreateRelationRequest struct {
	FromID    string   `json:"from_id" binding:"required,uuid"`
	ToID      string   `json:"to_id" binding:"required,uuid"`
	LsFrom    string   `json:"ls_from"`
	LsTo      string   `json:"ls_to"`
	Direction string   `json:"direction"`
	Labels    []string `json:"labels"`
}

type RelationResponse struct {
	ID        string   `json:"id"`
	FromID    string   `json:"from_id"`
	ToID      string   `json:"to_id"`
	LsFrom    string   `json:"ls_from"`
	LsTo      string   `json:"ls_to"`
	Direction string   `json:"direction"`
	Labels    []string `json:"labels"`
}

func annotationResponse(annotation *model.Annotation) AnnotationResponse {
	return AnnotationResponse{
		ID:           annotation.ID.String(),
		AssignmentID: annotation.AssignmentID.String(),
		Label:        annotation.Label,
		Start:        annotation.Start,
		End:          annotation.End,
		Text:         annotation.Text,
		LsID:         annotation.LsID,
		Confidence:   annotation.Confidence,
		Origin:       annotation.Origin,
	}
}

// Create records an annotation produced by the widget for an assignment
func (h *AnnotationHandler) Create(c *gin.Context) {
	userID, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	annotatorID, ok := userID.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format"})
		return
	}

	assignment, err := h.assignmentRepo.GetByID(c.Request.Context(), assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Assignment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignment"})
		return
	}

	if assignment.AnnotatorID == nil || *assignment.AnnotatorID != annotatorID {
		c.JSON(http.StatusForbidden, gin.H{"error": "This assignment is not yours"})
		return
	}

	var req CreateAnnotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	// Span annotations need both offsets; document-level ones have
	// neither.
	if (req.Start == nil) != (req.End == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Start and end must be given together"})
		return
	}

	annotation := &model.Annotation{
		ID:           uuid.New(),
		AssignmentID: assignmentID,
		Label:        req.Label,
		Start:        req.Start,
		End:          req.End,
		Text:         req.Text,
		LsID:         req.LsID,
		Confidence:   req.Confidence,
		Origin:       model.OriginManual,
	}
	if req.Origin != "" {
		annotation.Origin = req.Origin
	}

	if err := h.annotationRepo.Create(c.Request.Context(), annotation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create annotation"})
		return
	}

	c.JSON(http.StatusCreated, annotationResponse(annotation))
}

// GetByAssignmentID lists the annotations on an assignment
func (h *AnnotationHandler) GetByAssignmentID(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format"})
		return
	}

	annotations, err := h.annotationRepo.GetByAssignmentID(c.Request.Context(), assignmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve annotations"})
		return
	}

	resp := make([]AnnotationResponse, 0, len(annotations))
	for i := range annotations {
		resp = append(resp, annotationResponse(&annotations[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// CreateRelation links two annotations
func (h *AnnotationHandler) CreateRelation(c *gin.Context) {
	var req CreateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	fromID, err := uuid.Parse(req.FromID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid from annotation ID format"})
		return
	}
	toID, err := uuid.Parse(req.ToID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid to annotation ID format"})
		return
	}

	// Both endpoints must exist before the link is recorded.
	if _, err := h.annotationRepo.GetByID(c.Request.Context(), fromID); err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "From annotation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve annotation"})
		return
	}
	if _, err := h.annotationRepo.GetByID(c.Request.Context(), toID); err != nil {
		if errors.Is(err, repository.ErrAnnotationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "To annotation not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve annotation"})
		return
	}

	relation := &model.Relation{
		ID:        uuid.New(),
		FromID:    fromID,
		ToID:      toID,
		LsFrom:    req.LsFrom,
		LsTo:      req.LsTo,
		Direction: req.Direction,
		Labels:    req.Labels,
	}

	if err := h.relationRepo.Create(c.Request.Context(), relation); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create relation"})
		return
	}

	c.JSON(http.StatusCreated, RelationResponse{
		ID:        relation.ID.String(),
		FromID:    relation.FromID.String(),
		ToID:      relation.ToID.String(),
		LsFrom:    relation.LsFrom,
		LsTo:      relation.LsTo,
		Direction: relation.Direction,
		Labels:    relation.Labels,
	})
}

// GetRelationsByAssignmentID lists the relations among an assignment's
// annotations
func (h *AnnotationHandler) GetRelationsByAssignmentID(c *gin.Context) {
	assignmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid assignment ID format"})
		return
	}

	annotations, err := h.annotationRepo.GetByAssignmentID(c.Request.Context(), assignmentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve annotations"})
		return
	}

	annotationIDs := make([]uuid.UUID, 0, len(annotations))
	for _, annotation := range annotations {
		annotationIDs = append(annotationIDs, annotation.ID)
	}

	relations, err := h.relationRepo.GetByAnnotationIDs(c.Request.Context(), annotationIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve relations"})
		return
	}

	resp := make([]RelationResponse, 0, len(relations))
	for _, relation := range relations {
		resp = append(resp, RelationResponse{
			ID:        relation.ID.String(),
			FromID:    relation.FromID.String(),
			ToID:      relation.ToID.String(),
			LsFrom:    relation.LsFrom,
			LsTo:      relation.LsTo,
			Direction: relation.Direction,
			Labels:    relation.Labels,
		})
	}

	c.JSON(http.StatusOK, resp)
}
