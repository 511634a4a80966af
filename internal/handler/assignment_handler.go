package handler

import (
	"errors"
	"net/http"

	"labelhub/internal/middleware"
	"labelhub/internal/model"
	"labelhub/internal/repository"
	"labelhub/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AssignmentHandler struct {
	assignmentRepo *repository.AssignmentRepository
	taskRepo       *repository.TaskRepository
	shareRepo      *repository.ProjectShareRepository
	sequencer      *service.Sequencer
}

func NewAssignmentHandler(
	assignmentRepo *repository.AssignmentRepository,
	taskRepo *repository.TaskRepository,
	shareRepo *repository.ProjectShareRepository,
	sequencer *service.Sequencer,
) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentRepo: assignmentRepo,
		taskRepo:       taskRepo,
		shareRepo:      shareRepo,
		sequencer:      sequencer,
	}
}

type CreateAssignmentsRequest struct {
	Assignments []AssignmentSpec `json:"assignments" binding:"required,min=1,dive"`
}

type AssignmentSpec struct {
	DocumentID      string `json:"document_id" binding:"required,uuid"`
	AnnotatorID     string `json:"annotator_id" binding:"omitempty,uuid"`
	AnnotatorNumber int    `json:"annotator_number" binding:"required,min=1"`
	SeqPos          int    `json:"seq_pos" binding:"required,min=1"`
	Difficulty      int    `json:"difficulty"`
	Origin          string `json:"origin" binding:"omitempty,oneof=manual imported"`
}

type AssignmentResponse struct {
	ID              string  `json:"id"`
	TaskID          string  `json:"task_id"`
	DocumentID      string  `json:"document_id"`
	AnnotatorID     *string `json:"annotator_id,omitempty"`
	AnnotatorNumber int     `json:"annotator_number"`
	SeqPos          int     `json:"seq_pos"`
	Status          string  `json:"status"`
	Difficulty      int     `json:"difficulty"`
	Origin          string  `json:"origin"`
}

func assignmentResponse(assignment *model.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:              assignment.ID.String(),
		TaskID:          assignment.TaskID.String(),
		DocumentID:      assignment.DocumentID.String(),
		AnnotatorNumber: assignment.AnnotatorNumber,
		SeqPos:          assignment.SeqPos,
		Status:          assignment.Status,
		Difficulty:      assignment.Difficulty,
		Origin:          assignment.Origin,
	}
	if assignment.AnnotatorID != nil {
		id := assignment.AnnotatorID.String()
		resp.AnnotatorID = &id
	}
	return resp
}

// Create distributes a batch of assignments into a task. Sequence
// positions are fixed here, at creation, and never renumbered.
func (h *AssignmentHandler) Create(c *gin.Context) {
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

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	task, err := h.taskRepo.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	hasAccess, err := h.shareRepo.CheckAccess(c.Request.Context(), task.ProjectID, authenticatedUserID, model.RoleEditor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !hasAccess {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to distribute assignments for this task"})
		return
	}

	var req CreateAssignmentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assignments := make([]*model.Assignment, 0, len(req.Assignments))
	for _, spec := range req.Assignments {
		documentID, err := uuid.Parse(spec.DocumentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid document ID format"})
			return
		}

		assignment := &model.Assignment{
			ID:              uuid.New(),
			TaskID:          taskID,
			DocumentID:      documentID,
			AnnotatorNumber: spec.AnnotatorNumber,
			SeqPos:          spec.SeqPos,
			Status:          model.StatusPending,
			Difficulty:      spec.Difficulty,
			Origin:          model.OriginManual,
		}
		if spec.Origin != "" {
			assignment.Origin = spec.Origin
		}
		if spec.AnnotatorID != "" {
			annotatorID, err := uuid.Parse(spec.AnnotatorID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid annotator ID format"})
				return
			}
			assignment.AnnotatorID = &annotatorID
		}
		assignments = append(assignments, assignment)
	}

	if err := h.assignmentRepo.CreateAll(c.Request.Context(), assignments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create assignments"})
		return
	}

	resp := make([]AssignmentResponse, 0, len(assignments))
	for _, assignment := range assignments {
		resp = append(resp, assignmentResponse(assignment))
	}

	c.JSON(http.StatusCreated, resp)
}

// GetByTaskID lists the assignments of a task
func (h *AssignmentHandler) GetByTaskID(c *gin.Context) {
	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	assignments, err := h.assignmentRepo.GetByTaskID(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
		return
	}

	resp := make([]AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		resp = append(resp, assignmentResponse(&assignments[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// NextForTask returns the caller's next pending assignment in a task
func (h *AssignmentHandler) NextForTask(c *gin.Context) {
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

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	assignment, err := h.sequencer.NextForUserAndTask(c.Request.Context(), annotatorID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrAssignmentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No pending assignments in this task"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find next assignment"})
		return
	}

	c.JSON(http.StatusOK, assignmentResponse(assignment))
}

// NextForUser returns the caller's globally next pending assignment.
// Responds 204 when the annotator has no pending work anywhere; that
// is a normal state, not an error.
func (h *AssignmentHandler) NextForUser(c *gin.Context) {
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

	assignment, err := h.sequencer.NextForUser(c.Request.Context(), annotatorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to find next assignment"})
		return
	}

	if assignment == nil {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, assignmentResponse(assignment))
}

// Progress reports {next, total} for the caller in a task
func (h *AssignmentHandler) Progress(c *gin.Context) {
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

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return
	}

	progress, err := h.sequencer.Progress(c.Request.Context(), annotatorID, taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute progress"})
		return
	}

	c.JSON(http.StatusOK, progress)
}

// Complete marks an assignment as done
func (h *AssignmentHandler) Complete(c *gin.Context) {
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

	if err := h.assignmentRepo.MarkDone(c.Request.Context(), assignmentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete assignment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Assignment completed"})
}
