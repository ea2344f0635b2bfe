package service

import (
	"context"
	"time"

	"timetracker/internal/repository"
)

// UncategorizedLabel is the display bucket for tasks without a category.
// It is applied when building the distribution, never stored.
const UncategorizedLabel = "Uncategorized"

// CategorySlice is one labeled bucket of the category time distribution.
type CategorySlice struct {
	Name  string `json:"name"`
	Value int64  `json:"value"` // seconds
}

// Stats is a point-in-time productivity snapshot for one user.
type Stats struct {
	TasksCompletedToday    int64           `json:"tasksCompletedToday"`
	TasksCompletedThisWeek int64           `json:"tasksCompletedThisWeek"`
	TotalSecondsToday      int64           `json:"totalSecondsToday"`
	TotalSecondsThisWeek   int64           `json:"totalSecondsThisWeek"`
	CategoryDistribution   []CategorySlice `json:"categoryDistribution"`
}

// StatsService computes read-only dashboard aggregates. Completion counts
// use a task's last update time as a proxy for its completion time, so a
// completed task edited later is counted in the edit's window; a known
// approximation carried over from the tracked data model.
type StatsService struct {
	taskRepo  *repository.TaskRepository
	entryRepo *repository.TimeEntryRepository
	now       func() time.Time
}

func NewStatsService(taskRepo *repository.TaskRepository, entryRepo *repository.TimeEntryRepository) *StatsService {
	return &StatsService{
		taskRepo:  taskRepo,
		entryRepo: entryRepo,
		now:       time.Now,
	}
}

// GetStats computes the snapshot against a single "now" captured on entry.
// A user with no tasks gets zero counts and an empty distribution.
func (s *StatsService) GetStats(ctx context.Context, userID string) (*Stats, error) {
	now := s.now()
	startOfToday := startOfDay(now)
	startOfWeek := startOfToday.AddDate(0, 0, -int(now.Weekday()))

	completedToday, err := s.taskRepo.CountCompletedBetween(ctx, userID, startOfToday, now)
	if err != nil {
		return nil, err
	}
	completedThisWeek, err := s.taskRepo.CountCompletedBetween(ctx, userID, startOfWeek, now)
	if err != nil {
		return nil, err
	}

	secondsToday, err := s.entryRepo.SumDurationSince(ctx, userID, startOfToday)
	if err != nil {
		return nil, err
	}
	secondsThisWeek, err := s.entryRepo.SumDurationSince(ctx, userID, startOfWeek)
	if err != nil {
		return nil, err
	}

	totals, err := s.taskRepo.CategoryTotals(ctx, userID)
	if err != nil {
		return nil, err
	}
	distribution := make([]CategorySlice, 0, len(totals))
	for _, t := range totals {
		name := t.Category
		if name == "" {
			name = UncategorizedLabel
		}
		distribution = append(distribution, CategorySlice{Name: name, Value: t.TotalSeconds})
	}

	return &Stats{
		TasksCompletedToday:    completedToday,
		TasksCompletedThisWeek: completedThisWeek,
		TotalSecondsToday:      secondsToday,
		TotalSecondsThisWeek:   secondsThisWeek,
		CategoryDistribution:   distribution,
	}, nil
}

// startOfDay returns local midnight for t's calendar day. The week starts
// on Sunday, matching time.Weekday's zero value.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
