package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeEntry records one timer run against a task. EndTime == nil means the
// timer is still running. UserID duplicates the owning task's user so the
// partial unique index below can enforce at most one open entry per user
// across all of their tasks.
type TimeEntry struct {
	ID        string     `gorm:"primaryKey" json:"id"`
	TaskID    string     `gorm:"index" json:"taskId"`
	UserID    string     `gorm:"index:idx_open_entry_per_user,unique,where:end_time IS NULL" json:"userId"`
	StartTime time.Time  `json:"startTime"`
	EndTime   *time.Time `json:"endTime"`
	Duration  int64      `gorm:"default:0" json:"duration"` // seconds, 0 while running
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`

	Task *Task `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"task,omitempty"`
}

func (e *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// Open reports whether the entry's timer is still running.
func (e *TimeEntry) Open() bool {
	return e.EndTime == nil
}
