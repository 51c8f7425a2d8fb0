// Package mlservice is the HTTP client for the external prediction service.
package mlservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fittrack/internal/domain"
)

// Client calls the ML service's /predict endpoint. No retries and no
// circuit breaking: a failed or slow upstream call fails the request,
// bounded only by the client timeout.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a Client for the service at baseURL (e.g. "http://localhost:5000").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ domain.SuggestionProvider = (*Client)(nil)

type predictResponse struct {
	Success     bool                   `json:"success"`
	Suggestions []domain.Suggestion    `json:"suggestions"`
	ModelUsed   string                 `json:"model_used"`
	BasedOn     domain.SuggestionBasis `json:"based_on"`
	Error       string                 `json:"error"`
}

// Predict posts the metric snapshot to /predict and relays the response.
func (c *Client) Predict(ctx context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error) {
	payload, err := json.Marshal(map[string]any{
		"steps":       basis.Steps,
		"sleep_hours": basis.SleepHours,
		"calories":    basis.Calories,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build ml request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ml service unreachable: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read ml response: %w", err)
	}

	var pr predictResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("ml service returned status %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("decode ml response: %w", err)
	}

	if !pr.Success {
		if pr.Error != "" {
			return nil, fmt.Errorf("ml service error: %s", pr.Error)
		}
		return nil, fmt.Errorf("ml service returned status %d", resp.StatusCode)
	}

	return &domain.SuggestionResult{
		Suggestions: pr.Suggestions,
		ModelUsed:   pr.ModelUsed,
		BasedOn:     pr.BasedOn,
	}, nil
}
