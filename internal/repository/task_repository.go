package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timetracker/internal/model"
)

// CategoryTotal is one row of the category time distribution.
type CategoryTotal struct {
	Category     string
	TotalSeconds int64
}

// TaskRepository handles CRUD and aggregate queries for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r *TaskRepository) WithTx(tx *gorm.DB) *TaskRepository {
	return &TaskRepository{db: tx}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// FindOwned returns the task only if it exists and belongs to the user.
func (r *TaskRepository) FindOwned(ctx context.Context, userID, taskID string) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a task for the given user. Closed and open time entries go
// with it via the foreign key cascade.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).
		Delete(&model.Task{}).Error; err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// IncrementTimeSpent adds deltaSeconds to the task's accumulated total.
func (r *TaskRepository) IncrementTimeSpent(ctx context.Context, taskID string, deltaSeconds int64) error {
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Where("id = ?", taskID).
		Update("total_time_spent", gorm.Expr("total_time_spent + ?", deltaSeconds)).Error; err != nil {
		return fmt.Errorf("increment time spent: %w", err)
	}
	return nil
}

// CountCompletedBetween counts the user's completed tasks whose last update
// falls within [from, to].
func (r *TaskRepository) CountCompletedBetween(ctx context.Context, userID string, from, to time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("user_id = ? AND status = ? AND updated_at BETWEEN ? AND ?", userID, model.StatusCompleted, from, to).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count completed tasks: %w", err)
	}
	return count, nil
}

// CategoryTotals sums accumulated task time per stored category value for
// the user. The empty category is returned as-is; labeling is the caller's
// concern.
func (r *TaskRepository) CategoryTotals(ctx context.Context, userID string) ([]CategoryTotal, error) {
	var totals []CategoryTotal
	if err := r.db.WithContext(ctx).Model(&model.Task{}).
		Select("category AS category, COALESCE(SUM(total_time_spent), 0) AS total_seconds").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&totals).Error; err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return totals, nil
}
