package app_test

import (
	"context"
	"errors"
	"testing"

	"fittrack/internal/app"
	"fittrack/internal/domain"
)

type mockProvider struct {
	predictFn func(ctx context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error)
	calls     int
}

func (m *mockProvider) Predict(ctx context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error) {
	m.calls++
	if m.predictFn != nil {
		return m.predictFn(ctx, basis)
	}
	return &domain.SuggestionResult{ModelUsed: "test"}, nil
}

func TestGetSuggestion_NoLog(t *testing.T) {
	provider := &mockProvider{}
	svc := app.NewSuggestionService(&mockHealthRepo{}, provider)

	_, err := svc.GetSuggestion(context.Background(), 1)
	if !errors.Is(err, app.ErrNoHealthLog) {
		t.Fatalf("expected ErrNoHealthLog, got %v", err)
	}
	if provider.calls != 0 {
		t.Fatal("provider must not be called when no log exists")
	}
}

func TestGetSuggestion_ForwardsLatestLog(t *testing.T) {
	repo := &mockHealthRepo{
		latestFn: func(_ context.Context, _ int64) (*domain.HealthLog, error) {
			return &domain.HealthLog{LogDate: "2026-08-31", Steps: 8000, SleepHours: 7.5, Calories: 2000}, nil
		},
	}
	score := 90
	provider := &mockProvider{
		predictFn: func(_ context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error) {
			if basis.Steps != 8000 || basis.SleepHours != 7.5 || basis.Calories != 2000 {
				t.Errorf("unexpected basis: %+v", basis)
			}
			return &domain.SuggestionResult{
				Suggestions: []domain.Suggestion{{Category: "Overall", Level: "success", Score: &score}},
				ModelUsed:   "Random Forest",
				BasedOn:     basis,
			}, nil
		},
	}
	svc := app.NewSuggestionService(repo, provider)

	result, err := svc.GetSuggestion(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ModelUsed != "Random Forest" {
		t.Errorf("ModelUsed = %q; want Random Forest", result.ModelUsed)
	}
	if len(result.Suggestions) != 1 || *result.Suggestions[0].Score != 90 {
		t.Errorf("unexpected suggestions: %+v", result.Suggestions)
	}
}

func TestGetSuggestion_ProviderError(t *testing.T) {
	repo := &mockHealthRepo{
		latestFn: func(_ context.Context, _ int64) (*domain.HealthLog, error) {
			return &domain.HealthLog{LogDate: "2026-08-31"}, nil
		},
	}
	provider := &mockProvider{
		predictFn: func(_ context.Context, _ domain.SuggestionBasis) (*domain.SuggestionResult, error) {
			return nil, errors.New("ml service unreachable")
		},
	}
	svc := app.NewSuggestionService(repo, provider)

	if _, err := svc.GetSuggestion(context.Background(), 1); err == nil {
		t.Fatal("expected upstream error to surface")
	}
}
