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

type SubtaskHandler struct {
	subtasks repository.SubtaskRepositoryInterface
	todos    repository.TodoRepositoryInterface
}

func NewSubtaskHandler(subtasks repository.SubtaskRepositoryInterface, todos repository.TodoRepositoryInterface) *SubtaskHandler {
	return &SubtaskHandler{subtasks: subtasks, todos: todos}
}

type CreateSubtaskRequest struct {
	ParentTodoID uint       `json:"parent_todo_id"`
	Title        string     `json:"title" binding:"required"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate      *time.Time `json:"due_date"`
	OrderIndex   *int       `json:"order_index"`
}

type UpdateSubtaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed"`
	Priority    *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	OrderIndex  *int       `json:"order_index"`
}

type ReorderSubtasksRequest struct {
	SubtaskIDs []uint `json:"subtask_ids" binding:"required,min=1"`
}

// Create handles POST /subtasks; the parent todo id comes from the body.
func (h *SubtaskHandler) Create(c *gin.Context) {
	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid subtask payload"))
		return
	}
	if req.ParentTodoID == 0 {
		respondError(c, apperror.Validation("parent_todo_id is required"))
		return
	}

	h.create(c, req)
}

// CreateForTodo handles POST /todos/:id/subtasks; the parent todo id comes
// from the path and overrides anything in the body.
func (h *SubtaskHandler) CreateForTodo(c *gin.Context) {
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req CreateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid subtask payload"))
		return
	}
	req.ParentTodoID = parentID

	h.create(c, req)
}

func (h *SubtaskHandler) create(c *gin.Context, req CreateSubtaskRequest) {
	if strings.TrimSpace(req.Title) == "" {
		respondError(c, apperror.Validation("title cannot be empty"))
		return
	}

	ctx := c.Request.Context()

	if _, err := h.todos.GetByID(ctx, req.ParentTodoID); err != nil {
		respondError(c, err)
		return
	}

	orderIndex := 0
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	} else {
		next, err := h.subtasks.NextOrderIndex(ctx, req.ParentTodoID)
		if err != nil {
			respondError(c, err)
			return
		}
		orderIndex = next
	}

	priority := model.PriorityMedium
	if req.Priority != "" {
		priority = req.Priority
	}

	subtask := &model.Subtask{
		ParentTodoID: req.ParentTodoID,
		Title:        req.Title,
		Description:  req.Description,
		Status:       model.StatusPending, // new subtasks always start pending
		Priority:     priority,
		DueDate:      req.DueDate,
		OrderIndex:   orderIndex,
	}
	if err := h.subtasks.Create(ctx, subtask); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.subtasks.GetByID(ctx, subtask.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *SubtaskHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	subtask, err := h.subtasks.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtask)
}

func (h *SubtaskHandler) GetByTodo(c *gin.Context) {
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.todos.GetByID(ctx, parentID); err != nil {
		respondError(c, err)
		return
	}

	subtasks, err := h.subtasks.GetByParentTodoID(ctx, parentID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *SubtaskHandler) GetByStatus(c *gin.Context) {
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	status := c.Param("status")
	if status != model.StatusPending && status != model.StatusInProgress && status != model.StatusCompleted {
		respondError(c, apperror.Validation("invalid status"))
		return
	}

	subtasks, err := h.subtasks.GetByStatus(c.Request.Context(), parentID, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *SubtaskHandler) GetOverdue(c *gin.Context) {
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	subtasks, err := h.subtasks.GetOverdue(c.Request.Context(), parentID, time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}

func (h *SubtaskHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateSubtaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid subtask payload"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.subtasks.GetByID(ctx, id); err != nil {
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
	if req.OrderIndex != nil {
		fields["order_index"] = *req.OrderIndex
	}

	if err := h.subtasks.Update(ctx, id, fields); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.subtasks.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *SubtaskHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.subtasks.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder handles PUT /todos/:id/subtasks/reorder. The repository owns the
// transactional all-or-nothing contract.
func (h *SubtaskHandler) Reorder(c *gin.Context) {
	parentID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req ReorderSubtasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("subtask_ids is required and must be non-empty"))
		return
	}

	subtasks, err := h.subtasks.Reorder(c.Request.Context(), parentID, req.SubtaskIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subtasks)
}
