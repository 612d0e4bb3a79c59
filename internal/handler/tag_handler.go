package handler

import (
	"net/http"
	"strings"

	"todoapi/internal/apperror"
	"todoapi/internal/model"
	"todoapi/internal/repository"

	"github.com/gin-gonic/gin"
)

type TagHandler struct {
	tags  repository.TagRepositoryInterface
	todos repository.TodoRepositoryInterface
}

func NewTagHandler(tags repository.TagRepositoryInterface, todos repository.TodoRepositoryInterface) *TagHandler {
	return &TagHandler{tags: tags, todos: todos}
}

type CreateTagRequest struct {
	Name        string `json:"name" binding:"required"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type UpdateTagRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color"`
	Description *string `json:"description"`
}

type AddTagRequest struct {
	TagID uint `json:"tag_id" binding:"required"`
}

func (h *TagHandler) Create(c *gin.Context) {
	var req CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid tag payload"))
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(c, apperror.Validation("tag name cannot be empty"))
		return
	}

	color := req.Color
	if color == "" {
		color = model.DefaultTagColor
	}

	tag := &model.Tag{
		Name:        req.Name,
		Color:       color,
		Description: req.Description,
	}
	if err := h.tags.Create(c.Request.Context(), tag); err != nil {
		respondError(c, err)
		return
	}

	created, err := h.tags.GetByID(c.Request.Context(), tag.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *TagHandler) GetAll(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *TagHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	tag, err := h.tags.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *TagHandler) Update(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("invalid tag payload"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.tags.GetByID(ctx, id); err != nil {
		respondError(c, err)
		return
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			respondError(c, apperror.Validation("tag name cannot be empty"))
			return
		}
		fields["name"] = *req.Name
	}
	if req.Color != nil {
		fields["color"] = *req.Color
	}
	if req.Description != nil {
		fields["description"] = *req.Description
	}

	if err := h.tags.Update(ctx, id, fields); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.tags.GetByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *TagHandler) Delete(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.tags.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTodoTags returns the tags attached to a todo.
func (h *TagHandler) GetTodoTags(c *gin.Context) {
	todoID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.todos.GetByID(ctx, todoID); err != nil {
		respondError(c, err)
		return
	}

	tags, err := h.tags.GetByTodoID(ctx, todoID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// GetTodosByTag returns the todos carrying a tag.
func (h *TagHandler) GetTodosByTag(c *gin.Context) {
	tagID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.tags.GetByID(ctx, tagID); err != nil {
		respondError(c, err)
		return
	}

	todos, err := h.tags.GetTodosByTag(ctx, tagID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, todos)
}

// AddTagToTodo associates a tag with a todo; re-adding is a no-op success.
func (h *TagHandler) AddTagToTodo(c *gin.Context) {
	todoID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.Validation("tag_id is required"))
		return
	}

	ctx := c.Request.Context()
	if _, err := h.todos.GetByID(ctx, todoID); err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.tags.GetByID(ctx, req.TagID); err != nil {
		respondError(c, err)
		return
	}

	if err := h.tags.AttachToTodo(ctx, todoID, req.TagID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tag added to todo"})
}

func (h *TagHandler) RemoveTagFromTodo(c *gin.Context) {
	todoID, err := parseIDParam(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	tagID, err := parseIDParam(c, "tagId")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.tags.DetachFromTodo(c.Request.Context(), todoID, tagID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
