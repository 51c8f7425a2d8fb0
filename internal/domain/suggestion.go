package domain

import "context"

// Suggestion is one entry of the ML service's advice payload. The
// distinguished "Overall" category carries the aggregate score.
type Suggestion struct {
	Category string `json:"category"`
	Level    string `json:"level"`
	Message  string `json:"message"`
	Tip      string `json:"tip"`
	Score    *int   `json:"score,omitempty"`
}

// SuggestionBasis is the metric snapshot a prediction was computed from.
type SuggestionBasis struct {
	Steps      int64   `json:"steps"`
	SleepHours float64 `json:"sleep_hours"`
	Calories   int64   `json:"calories"`
	Date       string  `json:"date,omitempty"`
}

// SuggestionResult is the ML service response relayed to the caller.
// Results are transient: never persisted, never cached.
type SuggestionResult struct {
	Suggestions []Suggestion    `json:"suggestions"`
	ModelUsed   string          `json:"model_used"`
	BasedOn     SuggestionBasis `json:"based_on"`
}

// SuggestionProvider is the port for the external prediction service.
type SuggestionProvider interface {
	Predict(ctx context.Context, basis SuggestionBasis) (*SuggestionResult, error)
}
