package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timetracker/internal/model"
)

// TimeEntryRepository handles storage for timer entries.
type TimeEntryRepository struct {
	db *gorm.DB
}

func NewTimeEntryRepository(db *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TimeEntryRepository) WithTx(tx *gorm.DB) *TimeEntryRepository {
	return &TimeEntryRepository{db: tx}
}

func (r *TimeEntryRepository) Create(ctx context.Context, entry *model.TimeEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create time entry: %w", err)
	}
	return nil
}

// FindOpenByUser returns the user's single running entry with its task
// preloaded, or gorm.ErrRecordNotFound.
func (r *TimeEntryRepository) FindOpenByUser(ctx context.Context, userID string) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).Preload("Task").
		Where("user_id = ? AND end_time IS NULL", userID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindOpenByTask returns the running entry for one task, or
// gorm.ErrRecordNotFound.
func (r *TimeEntryRepository) FindOpenByTask(ctx context.Context, taskID string) (*model.TimeEntry, error) {
	var entry model.TimeEntry
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND end_time IS NULL", taskID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// Close sets the entry's end time and final duration. The duration column is
// never touched again after this.
func (r *TimeEntryRepository) Close(ctx context.Context, entryID string, endTime time.Time, durationSeconds int64) error {
	if err := r.db.WithContext(ctx).Model(&model.TimeEntry{}).Where("id = ?", entryID).
		Updates(map[string]interface{}{
			"end_time": endTime,
			"duration": durationSeconds,
		}).Error; err != nil {
		return fmt.Errorf("close time entry: %w", err)
	}
	return nil
}

// SumDurationSince sums closed durations over the user's entries started at
// or after from. Open entries carry duration 0 and so contribute nothing.
func (r *TimeEntryRepository) SumDurationSince(ctx context.Context, userID string, from time.Time) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.TimeEntry{}).
		Select("COALESCE(SUM(duration), 0)").
		Where("user_id = ? AND start_time >= ?", userID, from).
		Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("sum durations: %w", err)
	}
	return total, nil
}

func (r *TimeEntryRepository) ListByTask(ctx context.Context, taskID string) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("start_time DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
