package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// TimerService owns the time-tracking lifecycle: it guarantees at most one
// running timer per user across all of their tasks, and keeps each task's
// accumulated total in step with its closed entries.
//
// Completed-task policy: the engine deliberately allows starting a timer on
// a completed task. Whether that should be offered is a caller decision,
// not an engine invariant.
type TimerService struct {
	db        *gorm.DB
	taskRepo  *repository.TaskRepository
	entryRepo *repository.TimeEntryRepository
	now       func() time.Time
}

func NewTimerService(db *gorm.DB, taskRepo *repository.TaskRepository, entryRepo *repository.TimeEntryRepository) *TimerService {
	return &TimerService{
		db:        db,
		taskRepo:  taskRepo,
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

// StartTimer opens a new time entry for the task. It fails with
// ErrTaskNotFound when the task does not exist or belongs to someone else,
// and with ErrTimerRunning when any of the user's tasks already has an open
// entry. The open-entry check and the insert run in one write transaction;
// the partial unique index on open entries is the storage-layer backstop,
// so raced starts admit exactly one winner.
func (s *TimerService) StartTimer(ctx context.Context, userID, taskID string) (*model.TimeEntry, error) {
	var entry *model.TimeEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.taskRepo.WithTx(tx).FindOwned(ctx, userID, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		_, err := s.entryRepo.WithTx(tx).FindOpenByUser(ctx, userID)
		switch {
		case err == nil:
			return ErrTimerRunning
		case errors.Is(err, gorm.ErrRecordNotFound):
			// No running timer, free to start.
		default:
			return fmt.Errorf("find open entry: %w", err)
		}

		entry = &model.TimeEntry{
			TaskID:    taskID,
			UserID:    userID,
			StartTime: s.now(),
		}
		return s.entryRepo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTimerRunning
		}
		return nil, err
	}
	return entry, nil
}

// StopTimer closes the running entry for this task, computing its duration
// as whole seconds elapsed (truncated, never negative), and increments the
// task's accumulated total by the same amount. Both writes commit together
// or not at all. The open-entry lookup is scoped to the task: stopping a
// task whose timer is not running fails with ErrNoActiveTimer even if
// another task's timer is.
func (s *TimerService) StopTimer(ctx context.Context, userID, taskID string) (*model.TimeEntry, error) {
	var entry *model.TimeEntry

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.taskRepo.WithTx(tx).FindOwned(ctx, userID, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return fmt.Errorf("find task: %w", err)
		}

		open, err := s.entryRepo.WithTx(tx).FindOpenByTask(ctx, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoActiveTimer
			}
			return fmt.Errorf("find open entry: %w", err)
		}

		endTime := s.now()
		duration := int64(endTime.Sub(open.StartTime) / time.Second)
		if duration < 0 {
			duration = 0
		}

		if err := s.entryRepo.WithTx(tx).Close(ctx, open.ID, endTime, duration); err != nil {
			return err
		}
		if err := s.taskRepo.WithTx(tx).IncrementTimeSpent(ctx, taskID, duration); err != nil {
			return err
		}

		open.EndTime = &endTime
		open.Duration = duration
		entry = open
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ActiveTimer returns the user's running entry with its task preloaded, or
// nil when no timer is running.
func (s *TimerService) ActiveTimer(ctx context.Context, userID string) (*model.TimeEntry, error) {
	entry, err := s.entryRepo.FindOpenByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open entry: %w", err)
	}
	return entry, nil
}
