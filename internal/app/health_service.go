// Package app holds the application services and business logic.
package app

import (
	"context"
	"errors"
	"time"

	"fittrack/internal/domain"
)

const (
	// DefaultLogWindow is the get-logs row window when none is requested.
	DefaultLogWindow = 30
	// DefaultStatsDays is the stats calendar-day window when none is requested.
	DefaultStatsDays = 7

	maxWindow = 366
)

// ErrNegativeMetric indicates a submitted metric was below zero.
var ErrNegativeMetric = errors.New("values cannot be negative")

// HealthService encapsulates health-log use cases.
type HealthService struct {
	repo domain.HealthLogRepository
}

// NewHealthService creates a HealthService backed by the given repository.
func NewHealthService(repo domain.HealthLogRepository) *HealthService {
	return &HealthService{repo: repo}
}

// AddLog validates the metrics and upserts the log for the current calendar
// day. The returned bool reports whether a new row was created rather than
// an existing one overwritten.
func (s *HealthService) AddLog(ctx context.Context, userID int64, steps int64, sleepHours float64, calories int64) (*domain.HealthLog, bool, error) {
	if steps < 0 || sleepHours < 0 || calories < 0 {
		return nil, false, ErrNegativeMetric
	}
	today := time.Now().In(time.Local).Format("2006-01-02")
	return s.repo.UpsertForDay(ctx, userID, today, steps, sleepHours, calories)
}

// RecentLogs returns up to limit logs ordered oldest-first for charting.
// The repository fetches newest-first; the slice is reversed before return.
func (s *HealthService) RecentLogs(ctx context.Context, userID int64, limit int) ([]domain.HealthLog, error) {
	if limit <= 0 || limit > maxWindow {
		limit = DefaultLogWindow
	}
	logs, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// LatestLog returns the most recent log, or nil when the user has none.
// A missing log is not an error.
func (s *HealthService) LatestLog(ctx context.Context, userID int64) (*domain.HealthLog, error) {
	return s.repo.Latest(ctx, userID)
}

// Stats aggregates metrics over the trailing days calendar days, computed
// at query time.
func (s *HealthService) Stats(ctx context.Context, userID int64, days int) (*domain.HealthStats, error) {
	if days <= 0 || days > maxWindow {
		days = DefaultStatsDays
	}
	return s.repo.StatsForWindow(ctx, userID, days)
}

// DayScore is one entry of the wellness score series.
type DayScore struct {
	Day   string `json:"log_date"`
	Score int    `json:"score"`
}

// Insights are the derived metrics computed server-side so that clients
// never duplicate the scoring formula.
type Insights struct {
	Streak            int        `json:"streak"`
	PersonalBestSteps int64      `json:"personal_best_steps"`
	DailyScores       []DayScore `json:"daily_scores"`
}

// GetInsights computes the wellness score series, login streak, and
// personal best over the most recent limit logs.
func (s *HealthService) GetInsights(ctx context.Context, userID int64, limit int) (*Insights, error) {
	logs, err := s.RecentLogs(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	scores := make([]DayScore, 0, len(logs))
	for _, l := range logs {
		scores = append(scores, DayScore{Day: l.LogDate, Score: l.Score()})
	}

	return &Insights{
		Streak:            domain.Streak(logs),
		PersonalBestSteps: domain.PersonalBestSteps(logs),
		DailyScores:       scores,
	}, nil
}
