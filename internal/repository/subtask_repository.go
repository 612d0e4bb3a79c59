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

type SubtaskRepository struct {
	db *gorm.DB
}

type SubtaskRepositoryInterface interface {
	Create(ctx context.Context, subtask *model.Subtask) error
	GetByID(ctx context.Context, id uint) (*model.Subtask, error)
	List(ctx context.Context) ([]model.Subtask, error)
	GetByParentTodoID(ctx context.Context, parentTodoID uint) ([]model.Subtask, error)
	GetByStatus(ctx context.Context, parentTodoID uint, status string) ([]model.Subtask, error)
	GetOverdue(ctx context.Context, parentTodoID uint, now time.Time) ([]model.Subtask, error)
	NextOrderIndex(ctx context.Context, parentTodoID uint) (int, error)
	Update(ctx context.Context, id uint, fields map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Reorder(ctx context.Context, parentTodoID uint, ids []uint) ([]model.Subtask, error)
}

var _ SubtaskRepositoryInterface = (*SubtaskRepository)(nil)

func NewSubtaskRepository(db *gorm.DB) *SubtaskRepository {
	return &SubtaskRepository{db: db}
}

func (r *SubtaskRepository) Create(ctx context.Context, subtask *model.Subtask) error {
	return r.db.WithContext(ctx).Create(subtask).Error
}

func (r *SubtaskRepository) GetByID(ctx context.Context, id uint) (*model.Subtask, error) {
	var subtask model.Subtask
	err := r.db.WithContext(ctx).First(&subtask, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("subtask with id %d", id))
	}
	if err != nil {
		return nil, err
	}
	return &subtask, nil
}

func (r *SubtaskRepository) List(ctx context.Context) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&subtasks).Error
	return subtasks, err
}

func (r *SubtaskRepository) GetByParentTodoID(ctx context.Context, parentTodoID uint) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).
		Where("parent_todo_id = ?", parentTodoID).
		Order("order_index ASC, created_at ASC").
		Find(&subtasks).Error
	return subtasks, err
}

func (r *SubtaskRepository) GetByStatus(ctx context.Context, parentTodoID uint, status string) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).
		Where("parent_todo_id = ? AND status = ?", parentTodoID, status).
		Order("order_index ASC, created_at ASC").
		Find(&subtasks).Error
	return subtasks, err
}

func (r *SubtaskRepository) GetOverdue(ctx context.Context, parentTodoID uint, now time.Time) ([]model.Subtask, error) {
	var subtasks []model.Subtask
	err := r.db.WithContext(ctx).
		Where("parent_todo_id = ? AND due_date < ? AND status != ?", parentTodoID, now, model.StatusCompleted).
		Order("due_date ASC").
		Find(&subtasks).Error
	return subtasks, err
}

// NextOrderIndex returns the order index a newly appended subtask should get.
func (r *SubtaskRepository) NextOrderIndex(ctx context.Context, parentTodoID uint) (int, error) {
	var next struct {
		Next int
	}
	err := r.db.WithContext(ctx).Model(&model.Subtask{}).
		Select("COALESCE(MAX(order_index), -1) + 1 as next").
		Where("parent_todo_id = ?", parentTodoID).
		Scan(&next).Error
	return next.Next, err
}

func (r *SubtaskRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&model.Subtask{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("subtask with id %d", id))
	}
	return nil
}

func (r *SubtaskRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&model.Subtask{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(fmt.Sprintf("subtask with id %d", id))
	}
	return nil
}

// Reorder assigns order_index 0..n-1 to the given subtask ids, in input
// order, inside one transaction. Each update is constrained to the stated
// parent; if any id misses, the whole transaction rolls back and nothing
// is persisted. On success the parent's subtasks are re-read in new order.
func (r *SubtaskRepository) Reorder(ctx context.Context, parentTodoID uint, ids []uint) ([]model.Subtask, error) {
	if len(ids) == 0 {
		return nil, apperror.Validation("subtask_ids cannot be empty")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, apperror.Validation(fmt.Sprintf("duplicate subtask id %d", id))
		}
		seen[id] = struct{}{}
	}

	err := r.db.WithContext(ctx).Select("id").First(&model.Todo{}, parentTodoID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound(fmt.Sprintf("todo with id %d", parentTodoID))
	}
	if err != nil {
		return nil, err
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			// UpdateColumn leaves updated_at alone; a reorder is not an edit.
			result := tx.Model(&model.Subtask{}).
				Where("id = ? AND parent_todo_id = ?", id, parentTodoID).
				UpdateColumn("order_index", position)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return apperror.NotFound(fmt.Sprintf("subtask with id %d", id))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByParentTodoID(ctx, parentTodoID)
}
