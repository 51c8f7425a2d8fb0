// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"fittrack/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu    sync.Mutex
	logs  []domain.HealthLog
	users []*domain.User

	logIDCounter  int64
	userIDCounter int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.HealthLogRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)

// --- HealthLogRepository ---

// UpsertForDay inserts or overwrites the log for (userID, day). The mutex
// stands in for the storage-level unique constraint.
func (db *DB) UpsertForDay(ctx context.Context, userID int64, day string, steps int64, sleepHours float64, calories int64) (*domain.HealthLog, bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	for i := range db.logs {
		l := &db.logs[i]
		if l.UserID == userID && l.LogDate == day {
			l.Steps = steps
			l.SleepHours = sleepHours
			l.Calories = calories
			l.UpdatedAt = now
			ret := *l
			return &ret, false, nil
		}
	}

	db.logIDCounter++
	l := domain.HealthLog{
		ID:         db.logIDCounter,
		UserID:     userID,
		LogDate:    day,
		Steps:      steps,
		SleepHours: sleepHours,
		Calories:   calories,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	db.logs = append(db.logs, l)
	return &l, true, nil
}

// ListRecent returns up to limit logs for a user, newest-first by date.
func (db *DB) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.HealthLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	result := make([]domain.HealthLog, 0, limit)
	for _, l := range db.logs {
		if l.UserID == userID {
			result = append(result, l)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].LogDate > result[j].LogDate
	})

	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Latest returns the most recent log for a user, or nil when none exist.
func (db *DB) Latest(ctx context.Context, userID int64) (*domain.HealthLog, error) {
	logs, err := db.ListRecent(ctx, userID, 1)
	if err != nil || len(logs) == 0 {
		return nil, err
	}
	ret := logs[0]
	return &ret, nil
}

// StatsForWindow aggregates over logs dated within the trailing days days.
func (db *DB) StatsForWindow(ctx context.Context, userID int64, days int) (*domain.HealthStats, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cutoff := time.Now().In(time.Local).AddDate(0, 0, -days).Format("2006-01-02")

	var stats domain.HealthStats
	var sumSteps, sumCalories int64
	var sumSleep float64

	for _, l := range db.logs {
		if l.UserID != userID || l.LogDate < cutoff {
			continue
		}
		stats.TotalLogs++
		sumSteps += l.Steps
		sumSleep += l.SleepHours
		sumCalories += l.Calories
		if stats.MaxSteps == nil || l.Steps > *stats.MaxSteps {
			steps := l.Steps
			stats.MaxSteps = &steps
		}
		if stats.MinSteps == nil || l.Steps < *stats.MinSteps {
			steps := l.Steps
			stats.MinSteps = &steps
		}
	}

	if stats.TotalLogs > 0 {
		n := float64(stats.TotalLogs)
		avgSteps := float64(sumSteps) / n
		avgSleep := sumSleep / n
		avgCalories := float64(sumCalories) / n
		stats.AvgSteps = &avgSteps
		stats.AvgSleep = &avgSleep
		stats.AvgCalories = &avgCalories
	}
	return &stats, nil
}

// --- UserRepository ---

// GetByEmail retrieves a user by email, or nil when none exists.
func (db *DB) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

// GetByID retrieves a user by ID, or nil when none exists.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return nil, errors.New("user already exists")
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	return u, nil
}
