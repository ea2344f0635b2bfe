package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// TaskUpdate carries optional field changes; nil means leave as-is.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo *repository.TaskRepository
}

func NewTaskService(taskRepo *repository.TaskRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo}
}

func (s *TaskService) CreateTask(ctx context.Context, userID string, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !model.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	task := model.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Status:      model.StatusIncomplete,
		Priority:    priority,
		Category:    input.Category,
	}

	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) ListTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return s.taskRepo.ListByUser(ctx, userID)
}

func (s *TaskService) GetTask(ctx context.Context, userID, taskID string) (*model.Task, error) {
	task, err := s.taskRepo.FindOwned(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// UpdateTask applies the given field changes. Marking a task completed here
// is what feeds the completed-today/this-week counters.
func (s *TaskService) UpdateTask(ctx context.Context, userID, taskID string, update TaskUpdate) (*model.Task, error) {
	task, err := s.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		if !model.ValidStatus(*update.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *update.Status)
		}
		task.Status = *update.Status
	}
	if update.Priority != nil {
		if !model.ValidPriority(*update.Priority) {
			return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *update.Priority)
		}
		task.Priority = *update.Priority
	}
	if update.Category != nil {
		task.Category = *update.Category
	}

	if err := s.taskRepo.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task and, through the storage cascade, all of its
// time entries.
func (s *TaskService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if _, err := s.GetTask(ctx, userID, taskID); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, userID, taskID)
}
