// Package domain contains the core business entities and interfaces.
package domain

import (
	"context"
	"time"
)

// HealthLog is one user's recorded metrics for a single calendar date.
// At most one log exists per (user, date); same-day resubmissions mutate
// the row in place.
type HealthLog struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	LogDate    string    `json:"log_date"`
	Steps      int64     `json:"steps"`
	SleepHours float64   `json:"sleep_hours"`
	Calories   int64     `json:"calories"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// HealthStats are aggregates over a trailing window of logs. The averages
// and extremes are nil when no logs fall inside the window.
type HealthStats struct {
	AvgSteps    *float64 `json:"avg_steps"`
	AvgSleep    *float64 `json:"avg_sleep"`
	AvgCalories *float64 `json:"avg_calories"`
	MaxSteps    *int64   `json:"max_steps"`
	MinSteps    *int64   `json:"min_steps"`
	TotalLogs   int64    `json:"total_logs"`
}

// HealthLogRepository is the port for health-log persistence.
type HealthLogRepository interface {
	// UpsertForDay inserts or overwrites the log for (userID, day) in a
	// single statement and reports whether a new row was created.
	UpsertForDay(ctx context.Context, userID int64, day string, steps int64, sleepHours float64, calories int64) (*HealthLog, bool, error)
	// ListRecent returns up to limit logs ordered newest-first by date.
	ListRecent(ctx context.Context, userID int64, limit int) ([]HealthLog, error)
	// Latest returns the most recent log, or nil when the user has none.
	Latest(ctx context.Context, userID int64) (*HealthLog, error)
	// StatsForWindow aggregates over the trailing days calendar days.
	StatsForWindow(ctx context.Context, userID int64, days int) (*HealthStats, error)
}
