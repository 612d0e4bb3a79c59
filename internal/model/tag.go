package model

import "time"

// DefaultTagColor is applied when a tag is created without a color.
const DefaultTagColor = "#007bff"

type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null" json:"name"`
	Color       string    `gorm:"not null;default:#007bff" json:"color"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Todos []Todo `gorm:"many2many:todo_tags" json:"-"`
}

// TodoTag is the join row between todos and tags. At most one association
// exists per (todo_id, tag_id) pair.
type TodoTag struct {
	TodoID uint `gorm:"primaryKey" json:"todo_id"`
	TagID  uint `gorm:"primaryKey" json:"tag_id"`
}
