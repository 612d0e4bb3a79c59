package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"todoapi/internal/apperror"
	"todoapi/internal/model"

	"gorm.io/gorm"
)

type TodoRepository struct {
	db *gorm.DB
}

type TodoRepositoryInterface interface {
	Create(ctx context.Context, todo *model.Todo) error
	GetByID(ctx context.Context, id uint) (*model.Todo, error)
	GetWithSubtasks(ctx context.Context, id uint) (*model.Todo, error)
	List(ctx context.Context) ([]model.Todo, error)
	GetByStatus(ctx context.Context, status string) ([]model.Todo, error)
	GetByPriority(ctx context.Context, priority string) ([]model.Todo, error)
	GetOverdue(ctx context.Context, now time.Time) ([]model.Todo, error)
	GetUpcoming(ctx context.Context, now time.Time) ([]model.Todo, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
}

var _ TodoRepositoryInterface = (*TodoRepository)(nil)

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

func (r *TodoRepository) GetByID(ctx context.Context, id uint) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).First(&todo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("todo with id %d", id))
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

// GetWithSubtasks loads a todo together with its subtasks in display order.
func (r *TodoRepository) GetWithSubtasks(ctx context.Context, id uint) (*model.Todo, error) {
	var todo model.Todo
	err := r.db.WithContext(ctx).
		Preload("Subtasks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC, created_at ASC")
		}).
		First(&todo, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("todo with id %d", id))
	}
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (r *TodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&todos).Error
	return todos, err
}

func (r *TodoRepository) GetByStatus(ctx context.Context, status string) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&todos).Error
	return todos, err
}

func (r *TodoRepository) GetByPriority(ctx context.Context, priority string) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Where("priority = ?", priority).
		Order("created_at DESC").
		Find(&todos).Error
	return todos, err
}

// GetOverdue returns uncompleted todos whose due date has passed relative to
// the caller's now reference.
func (r *TodoRepository) GetOverdue(ctx context.Context, now time.Time) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Where("due_date < ? AND status != ?", now, model.StatusCompleted).
		Order("due_date ASC").
		Find(&todos).Error
	return todos, err
}

func (r *TodoRepository) GetUpcoming(ctx context.Context, now time.Time) ([]model.Todo, error) {
	var todos []model.Todo
	err := r.db.WithContext(ctx).
		Where("due_date >= ? AND status != ?", now, model.StatusCompleted).
		Order("due_date ASC").
		Find(&todos).Error
	return todos, err
}

// Update applies only the given (column, value) pairs. An empty map runs no
// SQL at all, so updated_at is untouched; a non-empty map bumps it.
func (r *TodoRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("todo with id %d", id))
	}
	return nil
}

func (r *TodoRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Todo{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("todo with id %d", id))
	}
	return nil
}
