package handler

import (
	"net/http"
	"strings"
	"time"

	"todoapi/internal/apperror"
	"todoapi/internal/model"
	"todoapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type TodoHandler struct {
	todos repository.TodoRepositoryInterface
}

func NewTodoHandler(todos repository.TodoRepositoryInterface) *TodoHandler {
	return &TodoHandler{todos: todos}
}

type CreateTodoRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

type UpdateTodoRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
}

func (h *TodoHandler) Create(c *gin.Context) {
	var req CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid todo payload"))
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		respondError(c, apperror.Validation("title cannot be empty"))
		return
	}

	todo := &model.Todo{
		Title:       req.Title,
		Description: req.Description,
		Status:      model.StatusPending,
		Priority:    model.PriorityMedium,
		DueDate:     req.DueDate,
	}
	if req.Status != "" {
		todo.Status = req.Status
	}
	if req.Priority != "" {
		todo.Priority = req.Priority
	}

	if err := h.todos.Create(c.Request.Context(), todo); err != nil {
		respondError(c, err)
		return
	}

	// Re-read for server-assigned timestamps and defaults.
	created, err := h.todos.GetByID(c.Request.Context(), todo.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TodoHandler) GetAll(c *gin.Context) {
	todos, err := h.todos.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	todo, err := h.todos.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

// GetWithSubtasks returns a todo with its subtasks in display order.
func (h *TodoHandler) GetWithSubtasks(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	todo, err := h.todos.GetWithSubtasks(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todo)
}

func (h *TodoHandler) GetByStatus(c *gin.Context) {
	status := c.Param("status")
	if status != model.StatusPending && status != model.StatusInProgress && status != model.StatusCompleted {
		respondError(c, apperror.Validation("invalid status"))
		return
	}

	todos, err := h.todos.GetByStatus(c.Request.Context(), status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetByPriority(c *gin.Context) {
	priority := c.Param("priority")
	if priority != model.PriorityLow && priority != model.PriorityMedium && priority != model.PriorityHigh {
		respondError(c, apperror.Validation("invalid priority"))
		return
	}

	todos, err := h.todos.GetByPriority(c.Request.Context(), priority)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetOverdue(c *gin.Context) {
	todos, err := h.todos.GetOverdue(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) GetUpcoming(c *gin.Context) {
	todos, err := h.todos.GetUpcoming(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

func (h *TodoHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid todo payload"))
		return
	}

	// Existence check first so an empty update still 404s on a bad id.
	if _, err := h.todos.GetByID(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	fields := map[string]interface{}{}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			respondError(c, apperror.Validation("title cannot be empty"))
			return
		}
		fields["title"] = *req.Title
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}
	if req.Status != nil {
		fields["status"] = *req.Status
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.DueDate != nil {
		fields["due_date"] = *req.DueDate
	}

	if err := h.todos.Update(c.Request.Context(), id, fields); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.todos.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TodoHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.todos.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
