package app

import (
	"context"
	"errors"

	"fittrack/internal/domain"
)

// ErrNoHealthLog indicates the user has no log to base a prediction on.
var ErrNoHealthLog = errors.New("no health log found")

// SuggestionService proxies the caller's latest log to the external
// prediction service and relays its response unmodified. No retry and no
// caching: every call is a fresh round-trip.
type SuggestionService struct {
	logs     domain.HealthLogRepository
	provider domain.SuggestionProvider
}

// NewSuggestionService creates a SuggestionService using the given provider.
func NewSuggestionService(logs domain.HealthLogRepository, provider domain.SuggestionProvider) *SuggestionService {
	return &SuggestionService{logs: logs, provider: provider}
}

// GetSuggestion fetches the latest log and requests a prediction for it.
// Returns ErrNoHealthLog without contacting the provider when no log exists.
func (s *SuggestionService) GetSuggestion(ctx context.Context, userID int64) (*domain.SuggestionResult, error) {
	latest, err := s.logs.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, ErrNoHealthLog
	}

	return s.provider.Predict(ctx, domain.SuggestionBasis{
		Steps:      latest.Steps,
		SleepHours: latest.SleepHours,
		Calories:   latest.Calories,
		Date:       latest.LogDate,
	})
}
