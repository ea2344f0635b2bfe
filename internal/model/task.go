package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses.
const (
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task represents a single tracked item. TotalTimeSpent is a denormalized
// sum of closed time entry durations, incremented when a timer stops.
type Task struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"userId"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	Status         string    `gorm:"default:incomplete" json:"status"`
	Priority       string    `gorm:"default:medium" json:"priority"`
	Category       string    `json:"category,omitempty"`
	TotalTimeSpent int64     `gorm:"default:0" json:"totalTimeSpent"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	return s == StatusIncomplete || s == StatusCompleted
}

// ValidPriority reports whether p is a known task priority.
func ValidPriority(p string) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
