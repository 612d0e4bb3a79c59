package repository

import (
	"context"
	"errors"
	"fmt"

	"todoapi/internal/apperror"
	"todoapi/internal/model"

	"gorm.io/gorm"
)

type TagRepository struct {
	db *gorm.DB
}

type TagRepositoryInterface interface {
	Create(ctx context.Context, tag *model.Tag) error
	GetByID(ctx context.Context, id uint) (*model.Tag, error)
	List(ctx context.Context) ([]model.Tag, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	GetByTodoID(ctx context.Context, todoID uint) ([]model.Tag, error)
	GetTodosByTag(ctx context.Context, tagID uint) ([]model.Todo, error)
	AttachToTodo(ctx context.Context, todoID, tagID uint) error
	DetachFromTodo(ctx context.Context, todoID, tagID uint) error
}

var _ TagRepositoryInterface = (*TagRepository)(nil)

func NewTagRepository(db *gorm.DB) *TagRepository {
	return &TagRepository{db: db}
}

// Create inserts the tag. Name uniqueness rides on the database constraint;
// a violation surfaces as a Conflict.
func (r *TagRepository) Create(ctx context.Context, tag *model.Tag) error {
	err := r.db.WithContext(ctx).Create(tag).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperror.Conflict(fmt.Sprintf("tag %q already exists", tag.Name))
	}
	return err
}

func (r *TagRepository) GetByID(ctx context.Context, id uint) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.WithContext(ctx).First(&tag, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("tag with id %d", id))
	}
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tags).Error
	return tags, err
}

func (r *TagRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.Tag{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("tag name already exists")
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("tag with id %d", id))
	}
	return nil
}

func (r *TagRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Tag{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("tag with id %d", id))
	}
	return nil
}

// GetByTodoID retrieves all tags associated with a todo.
func (r *TagRepository) GetByTodoID(ctx context.Context, todoID uint) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Joins("JOIN todo_tags ON todo_tags.tag_id = tags.id").
		Where("todo_tags.todo_id = ?", todoID).
		Find(&tags).Error
	return tags, err
}

// GetTodosByTag retrieves all todos carrying the given tag.
func (r *TagRepository) GetTodosByTag(ctx context.Context, tagID uint) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Joins("JOIN todo_tags ON todo_tags.todo_id = todos.id").
		Where("todo_tags.tag_id = ?", tagID).
		Order("todos.created_at DESC").
		Find(&todos).Error
	return todos, err
}

// AttachToTodo associates a tag with a todo. Re-attaching an existing pair
// is a no-op success.
func (r *TagRepository) AttachToTodo(ctx context.Context, todoID, tagID uint) error {
	return r.db.WithContext(ctx).Exec(
		"INSERT INTO todo_tags (todo_id, tag_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		todoID, tagID,
	).Error
}

func (r *TagRepository) DetachFromTodo(ctx context.Context, todoID, tagID uint) error {
	result := r.db.WithContext(ctx).Exec(
		"DELETE FROM todo_tags WHERE todo_id = ? AND tag_id = ?",
		todoID, tagID,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("association between todo %d and tag %d", todoID, tagID))
	}
	return nil
}
