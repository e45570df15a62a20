package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskdesk/internal/domain"
	"taskdesk/internal/repository"
	"taskdesk/internal/service"
)

// TaskHandler mantiene dependencias para los endpoints de tareas.
type TaskHandler struct {
	logger   *zap.Logger
	taskServ *service.TaskService
}

func NewTaskHandler(logger *zap.Logger, taskServ *service.TaskService) *TaskHandler {
	return &TaskHandler{
		logger:   logger,
		taskServ: taskServ,
	}
}

type taskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Complete    bool   `json:"complete"`
}

// List maneja GET /task.
func (h *TaskHandler) List(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	filter := repository.TaskFilter{
		Search:   c.Query("search"),
		Ordering: c.Query("ordering"),
	}
	if raw := c.Query("complete"); raw != "" {
		complete, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "complete must be a boolean"})
			return
		}
		filter.Complete = &complete
	}

	tasks, err := h.taskServ.List(c.Request.Context(), identity.UserID, filter)
	if err != nil {
		h.logger.Error("list tasks failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not list tasks"})
		return
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

// Create maneja POST /task.
func (h *TaskHandler) Create(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	task, err := h.taskServ.Create(c.Request.Context(), identity.UserID, service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Complete:    req.Complete,
	})
	if err != nil {
		if errors.Is(err, service.ErrTitleMissing) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		h.logger.Error("create task failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not create task"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": task})
}

// Get maneja GET /task/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	task, err := h.taskServ.Get(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		h.rejectTask(c, err, "get task failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Update maneja PUT /task/:id.
func (h *TaskHandler) Update(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update task request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid request"})
		return
	}

	task, err := h.taskServ.Update(c.Request.Context(), identity.UserID, c.Param("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Complete:    req.Complete,
	})
	if err != nil {
		h.rejectTask(c, err, "update task failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// ToggleComplete maneja PATCH /task/:id/complete.
func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	task, err := h.taskServ.ToggleComplete(c.Request.Context(), identity.UserID, c.Param("id"))
	if err != nil {
		h.rejectTask(c, err, "toggle task failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": task})
}

// Delete maneja DELETE /task/:id.
func (h *TaskHandler) Delete(c *gin.Context) {
	identity, ok := GetAuthIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "authentication credentials were not provided"})
		return
	}

	if err := h.taskServ.Delete(c.Request.Context(), identity.UserID, c.Param("id")); err != nil {
		h.rejectTask(c, err, "delete task failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) rejectTask(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "task not found"})
	case errors.Is(err, service.ErrTitleMissing):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		h.logger.Error(logMsg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "could not process task"})
	}
}
