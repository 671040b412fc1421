package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flowtrack/flowtrack-api/internal/dto"
	apierrors "github.com/flowtrack/flowtrack-api/internal/errors"
	"github.com/flowtrack/flowtrack-api/internal/middleware"
	"github.com/flowtrack/flowtrack-api/internal/services"
	"github.com/flowtrack/flowtrack-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks visible to the current user.
// Supports status, assigned (me|unassigned), q, page and limit query parameters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.taskService.List(c.Request.Context(), services.ListTasksInput{
		Status:   c.Query("status"),
		Assigned: c.Query("assigned"),
		Query:    c.Query("q"),
		Page:     params.Page,
		Limit:    params.Limit,
	}, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(page))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Get(c.Request.Context(), taskID, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title        string  `json:"title" binding:"required,max=255"`
		Description  *string `json:"description"`
		AssignedToID *string `json:"assigned_to_id" binding:"omitempty,uuid"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	input := services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.AssignedToID != nil {
		id := uuid.MustParse(*req.AssignedToID)
		input.AssignedToID = &id
	}

	task, err := h.taskService.Create(c.Request.Context(), input, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTaskStatus changes a task's status.
// The new status comes from the status query parameter or a JSON body.
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	status := c.Query("status")
	if status == "" && c.Request.ContentLength != 0 {
		type UpdateStatusRequest struct {
			Status string `json:"status"`
		}
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
		status = req.Status
	}
	if strings.TrimSpace(status) == "" {
		apierrors.BadRequestWithDetails(c, "Validation failed", gin.H{"status": "status is required"})
		return
	}

	task, err := h.taskService.UpdateStatus(c.Request.Context(), taskID, status, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// AssignTask sets the assignee of a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	taskID, ok := parseTaskID(c)
	if !ok {
		return
	}

	type AssignTaskRequest struct {
		AssignedToID string `json:"assigned_to_id" binding:"required,uuid"`
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), taskID, uuid.MustParse(req.AssignedToID), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// GenerateTasks drafts tasks from free text using AI. Nothing is stored.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), services.DraftTasksInput{Text: req.Text}, user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": dto.ToTaskDraftDTOs(drafts),
	})
}

func parseTaskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return uuid.Nil, false
	}
	return id, true
}
