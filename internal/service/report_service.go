package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"timetracker/internal/model"
	"timetracker/internal/repository"
)

// ReportService builds human-readable productivity summaries for periodic
// log reports.
type ReportService struct {
	userRepo *repository.UserRepository
	stats    *StatsService
}

func NewReportService(userRepo *repository.UserRepository, stats *StatsService) *ReportService {
	return &ReportService{userRepo: userRepo, stats: stats}
}

// Users returns every account a summary should be produced for.
func (s *ReportService) Users(ctx context.Context) ([]model.User, error) {
	return s.userRepo.ListAll(ctx)
}

// Summary renders one user's current stats as a multi-line report.
func (s *ReportService) Summary(ctx context.Context, user model.User, now time.Time) (string, error) {
	stats, err := s.stats.GetStats(ctx, user.ID)
	if err != nil {
		return "", err
	}

	categories := append([]CategorySlice(nil), stats.CategoryDistribution...)
	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Value != categories[j].Value {
			return categories[i].Value > categories[j].Value
		}
		return categories[i].Name < categories[j].Name
	})

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("productivity report for %s (%s)\n", user.Email, now.Format("2006-01-02")))
	builder.WriteString(fmt.Sprintf("  completed: %d today, %d this week\n", stats.TasksCompletedToday, stats.TasksCompletedThisWeek))
	builder.WriteString(fmt.Sprintf("  tracked:   %s today, %s this week\n", formatSeconds(stats.TotalSecondsToday), formatSeconds(stats.TotalSecondsThisWeek)))

	if len(categories) == 0 {
		builder.WriteString("  categories: none tracked yet")
	} else {
		builder.WriteString("  categories:")
		for _, c := range categories {
			builder.WriteString(fmt.Sprintf("\n    %s: %s", c.Name, formatSeconds(c.Value)))
		}
	}

	return builder.String(), nil
}

// formatSeconds renders a second count as 0s, 45s, 12m34s or 1h02m.
func formatSeconds(total int64) string {
	if total < 60 {
		return fmt.Sprintf("%ds", total)
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours == 0 {
		return fmt.Sprintf("%dm%02ds", minutes, seconds)
	}
	return fmt.Sprintf("%dh%02dm", hours, minutes)
}
