package model

import "time"

type Todo struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `json:"description"`
	Status      string     `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	Priority    string     `gorm:"type:varchar(16);not null;default:medium" json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Subtasks []Subtask `gorm:"foreignKey:ParentTodoID;constraint:OnDelete:CASCADE" json:"subtasks,omitempty"`
	Tags     []Tag     `gorm:"many2many:todo_tags" json:"tags,omitempty"`
}

// Statuses a todo or subtask can be in
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Priority levels
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)
