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

type TaskHandler struct {
	taskRepo   *repository.TaskRepository
	shareRepo  *repository.ProjectShareRepository
	replicator *service.Replicator
	reassigner *service.Reassigner
}

func NewTaskHandler(
	taskRepo *repository.TaskRepository,
	shareRepo *repository.ProjectShareRepository,
	replicator *service.Replicator,
	reassigner *service.Reassigner,
) *TaskHandler {
	return &TaskHandler{
		taskRepo:   taskRepo,
		shareRepo:  shareRepo,
		replicator: replicator,
		reassigner: reassigner,
	}
}

type TaskRequest struct {
	ProjectID   string  `json:"project_id" binding:"required,uuid"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	LabelsetID  string  `json:"labelset_id" binding:"required,uuid"`
	Level       string  `json:"level" binding:"required,oneof=document span"`
	Guidelines  string  `json:"guidelines"`
	ModelRef    *string `json:"model_ref"`
}

type TaskResponse struct {
	ID          string  `json:"id"`
	ProjectID   string  `json:"project_id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	LabelsetID  string  `json:"labelset_id"`
	Level       string  `json:"level"`
	Guidelines  string  `json:"guidelines"`
	ModelRef    *string `json:"model_ref,omitempty"`
}

type MergeTasksRequest struct {
	OriginalID string `json:"original_id" binding:"required,uuid"`
	SimilarID  string `json:"similar_id" binding:"required,uuid"`
}

type UpdateAssigneesRequest struct {
	// Emails is ordered by annotator slot; an empty string or an
	// unchanged email leaves that slot alone.
	Emails []string `json:"emails" binding:"required"`
}

func taskResponse(task *model.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		ProjectID:   task.ProjectID.String(),
		Name:        task.Name,
		Description: task.Description,
		LabelsetID:  task.LabelsetID.String(),
		Level:       task.Level,
		Guidelines:  task.Guidelines,
		ModelRef:    task.ModelRef,
	}
}

// Create defines a new labeling task
func (h *TaskHandler) Create(c *gin.Context) {
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

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	projectID, err := uuid.Parse(req.ProjectID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}
	labelsetID, err := uuid.Parse(req.LabelsetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid labelset ID format"})
		return
	}

	hasAccess, err := h.shareRepo.CheckAccess(c.Request.Context(), projectID, authenticatedUserID, model.RoleEditor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !hasAccess {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to create tasks in this project"})
		return
	}

	task := &model.Task{
		ID:          uuid.New(),
		ProjectID:   projectID,
		Name:        req.Name,
		Description: req.Description,
		LabelsetID:  labelsetID,
		Level:       req.Level,
		Guidelines:  req.Guidelines,
		ModelRef:    req.ModelRef,
	}

	if err := h.taskRepo.Create(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(task))
}

// GetByID retrieves a task
func (h *TaskHandler) GetByID(c *gin.Context) {
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

	c.JSON(http.StatusOK, taskResponse(task))
}

// GetByProjectID lists the tasks of a project
func (h *TaskHandler) GetByProjectID(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID format"})
		return
	}

	tasks, err := h.taskRepo.GetByProjectID(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	resp := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		resp = append(resp, taskResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, resp)
}

// Update mutates a task's definition
func (h *TaskHandler) Update(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to update this task"})
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	labelsetID, err := uuid.Parse(req.LabelsetID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid labelset ID format"})
		return
	}

	task.Name = req.Name
	task.Description = req.Description
	task.LabelsetID = labelsetID
	task.Level = req.Level
	task.Guidelines = req.Guidelines
	task.ModelRef = req.ModelRef

	if err := h.taskRepo.Update(c.Request.Context(), task); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, taskResponse(task))
}

// Delete removes a task; assignments, annotations and relations cascade
func (h *TaskHandler) Delete(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to delete this task"})
		return
	}

	if err := h.taskRepo.Delete(c.Request.Context(), taskID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// Replicate deep-copies a task with all its assignments, annotations
// and relations
func (h *TaskHandler) Replicate(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to replicate this task"})
		return
	}

	replica, err := h.replicator.Replicate(c.Request.Context(), taskID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(replica))
}

// Merge combines two compatible tasks into a fresh one
func (h *TaskHandler) Merge(c *gin.Context) {
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

	var req MergeTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	originalID, err := uuid.Parse(req.OriginalID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid original task ID format"})
		return
	}
	similarID, err := uuid.Parse(req.SimilarID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid similar task ID format"})
		return
	}

	original, err := h.taskRepo.GetByID(c.Request.Context(), originalID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Original task not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	hasAccess, err := h.shareRepo.CheckAccess(c.Request.Context(), original.ProjectID, authenticatedUserID, model.RoleEditor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check access"})
		return
	}
	if !hasAccess {
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to merge these tasks"})
		return
	}

	merged, err := h.replicator.Merge(c.Request.Context(), originalID, similarID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, taskResponse(merged))
}

// UpdateAssignees re-binds the task's annotator slots to the requested
// emails. Partial failures are surfaced as an error while still
// returning the per-slot outcomes, because successful slots have
// already persisted their new bindings.
func (h *TaskHandler) UpdateAssignees(c *gin.Context) {
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
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to reassign this task"})
		return
	}

	var req UpdateAssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	result, err := h.reassigner.UpdateAssignees(c.Request.Context(), taskID, req.Emails)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update assignees"})
		return
	}

	status := http.StatusOK
	if result.Outcome == service.OutcomePartialFailure || result.Outcome == service.OutcomeTotalFailure {
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{
		"message":    result.Message,
		"outcome":    result.Outcome,
		"annotators": result.Annotators,
	})
}
