package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fittrack/internal/domain"
)

const logColumns = "id, user_id, to_char(log_date, 'YYYY-MM-DD'), steps, sleep_hours, calories, created_at, updated_at"

// UpsertForDay inserts or overwrites the log for (userID, day) in one
// statement guarded by the (user_id, log_date) unique constraint, so two
// concurrent submissions for the same day cannot produce duplicate rows.
func (d *DB) UpsertForDay(ctx context.Context, userID int64, day string, steps int64, sleepHours float64, calories int64) (*domain.HealthLog, bool, error) {
	row := d.sql.QueryRowContext(ctx,
		`INSERT INTO health_logs (user_id, log_date, steps, sleep_hours, calories, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now(), now())
		 ON CONFLICT (user_id, log_date)
		 DO UPDATE SET steps = EXCLUDED.steps, sleep_hours = EXCLUDED.sleep_hours, calories = EXCLUDED.calories, updated_at = now()
		 RETURNING `+logColumns+", (created_at = updated_at);",
		userID, day, steps, sleepHours, calories,
	)

	var l domain.HealthLog
	var created bool
	if err := row.Scan(&l.ID, &l.UserID, &l.LogDate, &l.Steps, &l.SleepHours, &l.Calories, &l.CreatedAt, &l.UpdatedAt, &created); err != nil {
		return nil, false, err
	}
	return &l, created, nil
}

// ListRecent returns up to limit logs ordered newest-first by date.
func (d *DB) ListRecent(ctx context.Context, userID int64, limit int) ([]domain.HealthLog, error) {
	rows, err := d.sql.QueryContext(ctx,
		"SELECT "+logColumns+" FROM health_logs WHERE user_id=$1 ORDER BY log_date DESC LIMIT $2;",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.HealthLog, 0, limit)
	for rows.Next() {
		var l domain.HealthLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.LogDate, &l.Steps, &l.SleepHours, &l.Calories, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Latest returns the most recent log, or nil when the user has none.
func (d *DB) Latest(ctx context.Context, userID int64) (*domain.HealthLog, error) {
	row := d.sql.QueryRowContext(ctx,
		"SELECT "+logColumns+" FROM health_logs WHERE user_id=$1 ORDER BY log_date DESC LIMIT 1;",
		userID)

	var l domain.HealthLog
	if err := row.Scan(&l.ID, &l.UserID, &l.LogDate, &l.Steps, &l.SleepHours, &l.Calories, &l.CreatedAt, &l.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &l, nil
}

// StatsForWindow aggregates metrics over the trailing days calendar days,
// computed at query time.
func (d *DB) StatsForWindow(ctx context.Context, userID int64, days int) (*domain.HealthStats, error) {
	row := d.sql.QueryRowContext(ctx,
		`SELECT AVG(steps), AVG(sleep_hours), AVG(calories), MAX(steps), MIN(steps), COUNT(*)
		 FROM health_logs
		 WHERE user_id=$1 AND log_date >= CURRENT_DATE - $2::int;`,
		userID, days)

	var avgSteps, avgSleep, avgCalories sql.NullFloat64
	var maxSteps, minSteps sql.NullInt64
	var stats domain.HealthStats
	if err := row.Scan(&avgSteps, &avgSleep, &avgCalories, &maxSteps, &minSteps, &stats.TotalLogs); err != nil {
		return nil, err
	}

	if avgSteps.Valid {
		stats.AvgSteps = &avgSteps.Float64
	}
	if avgSleep.Valid {
		stats.AvgSleep = &avgSleep.Float64
	}
	if avgCalories.Valid {
		stats.AvgCalories = &avgCalories.Float64
	}
	if maxSteps.Valid {
		stats.MaxSteps = &maxSteps.Int64
	}
	if minSteps.Valid {
		stats.MinSteps = &minSteps.Int64
	}
	return &stats, nil
}
