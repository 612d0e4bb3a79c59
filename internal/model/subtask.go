package model

import "time"

// Subtask belongs to exactly one Todo. OrderIndex defines its display
// position among siblings; the reorder operation assigns a contiguous
// zero-based sequence in the caller's order.
type Subtask struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	ParentTodoID uint       `gorm:"not null;index" json:"parent_todo_id"`
	Title        string     `gorm:"not null" json:"title"`
	Description  string     `json:"description"`
	Status       string     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Priority     string     `gorm:"type:varchar(16);not null;default:medium" json:"priority"`
	DueDate      *time.Time `json:"due_date"`
	OrderIndex   int        `gorm:"not null;default:0" json:"order_index"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
