package adapthttp_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	adapthttp "fittrack/internal/adapter/http"
	"fittrack/internal/adapter/memory"
	"fittrack/internal/app"
	"fittrack/internal/domain"
)

// ---------------------------------------------------------------------------
// Test-server helpers
// ---------------------------------------------------------------------------

type stubProvider struct {
	predictFn func(ctx context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error)
	calls     int
}

func (p *stubProvider) Predict(ctx context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error) {
	p.calls++
	if p.predictFn != nil {
		return p.predictFn(ctx, basis)
	}
	return &domain.SuggestionResult{ModelUsed: "stub", BasedOn: basis}, nil
}

func newTestServer(t *testing.T, db *memory.DB, provider *stubProvider) *httptest.Server {
	t.Helper()

	if db == nil {
		db = memory.New()
	}
	if provider == nil {
		provider = &stubProvider{}
	}

	healthSvc := app.NewHealthService(db)
	authSvc := app.NewAuthService(db, []byte("test-secret"), time.Hour)
	suggestionSvc := app.NewSuggestionService(db, provider)

	webDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(webDir, "index.html"), []byte("<html></html>"), 0o600); err != nil {
		t.Fatal(err)
	}

	srv := adapthttp.New(healthSvc, suggestionSvc, authSvc, adapthttp.OIDCConfig{}, webDir, false)
	return httptest.NewServer(srv.Handler())
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("failed to decode response body: %v", err)
	}
	return m
}

func doJSON(t *testing.T, method, url, token string, payload any) *http.Response {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// registerUser creates an account through the API and returns its token.
func registerUser(t *testing.T, baseURL, email string) string {
	t.Helper()

	resp := doJSON(t, http.MethodPost, baseURL+"/api/auth/register", "", map[string]any{
		"name":     "Test User",
		"email":    email,
		"password": "secret123",
	})
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("register: missing token")
	}
	return token
}

// seedLog writes a log for an arbitrary day directly through the repository.
func seedLog(t *testing.T, db *memory.DB, userID int64, day string, steps int64, sleep float64, calories int64) {
	t.Helper()
	if _, _, err := db.UpsertForDay(context.Background(), userID, day, steps, sleep, calories); err != nil {
		t.Fatalf("seed log: %v", err)
	}
}

func dayOffset(offset int) string {
	return time.Now().In(time.Local).AddDate(0, 0, offset).Format("2006-01-02")
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if body := decodeBody(t, resp); body["ok"] != true {
		t.Fatalf("expected ok=true, got %v", body["ok"])
	}
}

func TestRegisterLoginMe(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()

	token := registerUser(t, ts.URL, "jane@example.com")

	// Duplicate registration is rejected.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/register", "", map[string]any{
		"name": "Jane Again", "email": "jane@example.com", "password": "secret123",
	})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", resp.StatusCode)
	}

	// Login with the right password.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]any{
		"email": "jane@example.com", "password": "secret123",
	})
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["token"] == "" || body["success"] != true {
		t.Fatalf("login: unexpected body %v", body)
	}

	// Wrong password.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/login", "", map[string]any{
		"email": "jane@example.com", "password": "wrongpass",
	})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login: expected 401, got %d", resp.StatusCode)
	}

	// /me returns the caller identity.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/auth/me", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", resp.StatusCode)
	}
	body = decodeBody(t, resp)
	user, _ := body["user"].(map[string]any)
	if user == nil || user["email"] != "jane@example.com" {
		t.Fatalf("me: unexpected user %v", body["user"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatal("me: password hash must not be serialized")
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()

	paths := []string{
		"/api/auth/me",
		"/api/health/get-logs",
		"/api/health/latest",
		"/api/health/stats",
		"/api/health/insights",
		"/api/ai/suggestion",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			resp, err := http.Get(ts.URL + p)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close() //nolint:errcheck
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.StatusCode)
			}
		})
	}

	// Garbage token is also rejected.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/latest", "not-a-jwt", nil)
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestAddLog(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "logger@example.com")

	tests := []struct {
		name       string
		payload    map[string]any
		wantStatus int
	}{
		{
			name:       "valid first submission",
			payload:    map[string]any{"steps": 8000, "sleep_hours": 7.5, "calories": 2000},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "same-day resubmission updates",
			payload:    map[string]any{"steps": 9500, "sleep_hours": 8, "calories": 2100},
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing field",
			payload:    map[string]any{"steps": 8000, "calories": 2000},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative steps",
			payload:    map[string]any{"steps": -100, "sleep_hours": 8, "calories": 2000},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative sleep",
			payload:    map[string]any{"steps": 8000, "sleep_hours": -1, "calories": 2000},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/health/add-log", token, tc.payload)
			defer resp.Body.Close() //nolint:errcheck

			if resp.StatusCode != tc.wantStatus {
				body := decodeBody(t, resp)
				t.Fatalf("expected %d, got %d; body: %v", tc.wantStatus, resp.StatusCode, body)
			}
		})
	}

	// Both valid submissions targeted today: exactly one row, holding the
	// second submission's values.
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/get-logs", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	body := decodeBody(t, resp)
	logs, _ := body["logs"].([]any)
	if len(logs) != 1 {
		t.Fatalf("expected 1 log after same-day resubmission, got %d", len(logs))
	}
	log, _ := logs[0].(map[string]any)
	if log["steps"] != float64(9500) {
		t.Errorf("expected last-write-wins steps 9500, got %v", log["steps"])
	}
}

func TestGetLogs_OldestFirstAndLimited(t *testing.T) {
	db := memory.New()
	ts := newTestServer(t, db, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "trends@example.com")

	for i := 0; i < 5; i++ {
		seedLog(t, db, 1, dayOffset(-i), int64(1000*(i+1)), 7, 2000)
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/get-logs?limit=3", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["count"] != float64(3) {
		t.Fatalf("expected count 3, got %v", body["count"])
	}
	logs, _ := body["logs"].([]any)
	if len(logs) != 3 {
		t.Fatalf("expected 3 logs, got %d", len(logs))
	}
	var prev string
	for i, raw := range logs {
		log, _ := raw.(map[string]any)
		day, _ := log["log_date"].(string)
		if i > 0 && day < prev {
			t.Errorf("expected oldest-first order, got %s after %s", day, prev)
		}
		prev = day
	}
	// Newest log is last and inside the 3-row window.
	if prev != dayOffset(0) {
		t.Errorf("expected newest day %s last, got %s", dayOffset(0), prev)
	}
}

func TestLatest_NoLogs(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "fresh@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/latest", token, nil)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for empty history, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Fatalf("expected success=true, got %v", body["success"])
	}
	if body["log"] != nil {
		t.Fatalf("expected null log, got %v", body["log"])
	}
}

func TestRegisterAddLogLatestStats(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "scenario@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/health/add-log", token, map[string]any{
		"steps": 8000, "sleep_hours": 7.5, "calories": 2000,
	})
	resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add-log: expected 201, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/health/latest", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	body := decodeBody(t, resp)
	log, _ := body["log"].(map[string]any)
	if log == nil {
		t.Fatal("latest: expected a log")
	}
	if log["steps"] != float64(8000) || log["log_date"] != dayOffset(0) {
		t.Fatalf("latest: unexpected log %v", log)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/health/stats?days=7", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	body = decodeBody(t, resp)
	stats, _ := body["stats"].(map[string]any)
	if stats == nil {
		t.Fatal("stats: missing stats object")
	}
	if stats["avg_steps"] != float64(8000) {
		t.Errorf("stats: avg_steps = %v; want 8000", stats["avg_steps"])
	}
	if stats["total_logs"] != float64(1) {
		t.Errorf("stats: total_logs = %v; want 1", stats["total_logs"])
	}
}

func TestStats_EmptyWindow(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "empty@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/stats", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	body := decodeBody(t, resp)
	stats, _ := body["stats"].(map[string]any)
	if stats == nil {
		t.Fatal("missing stats object")
	}
	if stats["total_logs"] != float64(0) {
		t.Errorf("total_logs = %v; want 0", stats["total_logs"])
	}
	if stats["avg_steps"] != nil {
		t.Errorf("avg_steps = %v; want null", stats["avg_steps"])
	}
}

func TestInsights(t *testing.T) {
	db := memory.New()
	ts := newTestServer(t, db, nil)
	defer ts.Close()
	token := registerUser(t, ts.URL, "insights@example.com")

	// Three consecutive days, then a gap.
	seedLog(t, db, 1, dayOffset(0), 9000, 8, 2000)
	seedLog(t, db, 1, dayOffset(-1), 12000, 6, 2600)
	seedLog(t, db, 1, dayOffset(-2), 4000, 7, 1900)
	seedLog(t, db, 1, dayOffset(-5), 15000, 8, 2100)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/health/insights", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	insights, _ := body["insights"].(map[string]any)
	if insights == nil {
		t.Fatal("missing insights object")
	}
	if insights["streak"] != float64(3) {
		t.Errorf("streak = %v; want 3", insights["streak"])
	}
	if insights["personal_best_steps"] != float64(15000) {
		t.Errorf("personal_best_steps = %v; want 15000", insights["personal_best_steps"])
	}
	scores, _ := insights["daily_scores"].([]any)
	if len(scores) != 4 {
		t.Fatalf("expected 4 daily scores, got %d", len(scores))
	}
}

func TestSuggestion_NoLog(t *testing.T) {
	provider := &stubProvider{}
	ts := newTestServer(t, nil, provider)
	defer ts.Close()
	token := registerUser(t, ts.URL, "nolog@example.com")

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/ai/suggestion", token, nil)
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if provider.calls != 0 {
		t.Fatal("ML service must not be called when no log exists")
	}
}

func TestSuggestion_Success(t *testing.T) {
	score := 85
	provider := &stubProvider{
		predictFn: func(_ context.Context, basis domain.SuggestionBasis) (*domain.SuggestionResult, error) {
			return &domain.SuggestionResult{
				Suggestions: []domain.Suggestion{
					{Category: "Activity", Level: "success", Message: "nice", Tip: "keep walking"},
					{Category: "Overall", Level: "success", Message: "great", Score: &score},
				},
				ModelUsed: "Random Forest",
				BasedOn:   basis,
			}, nil
		},
	}
	db := memory.New()
	ts := newTestServer(t, db, provider)
	defer ts.Close()
	token := registerUser(t, ts.URL, "suggest@example.com")
	seedLog(t, db, 1, dayOffset(0), 8000, 7.5, 2000)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/ai/suggestion", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["model_used"] != "Random Forest" {
		t.Errorf("model_used = %v; want Random Forest", body["model_used"])
	}
	suggestions, _ := body["suggestions"].([]any)
	if len(suggestions) != 2 {
		t.Fatalf("expected 2 suggestions, got %d", len(suggestions))
	}
	basedOn, _ := body["based_on"].(map[string]any)
	if basedOn == nil || basedOn["steps"] != float64(8000) {
		t.Errorf("based_on = %v", body["based_on"])
	}
}

func TestSuggestion_UpstreamFailure(t *testing.T) {
	provider := &stubProvider{
		predictFn: func(_ context.Context, _ domain.SuggestionBasis) (*domain.SuggestionResult, error) {
			return nil, fmt.Errorf("ml service error: model not trained")
		},
	}
	db := memory.New()
	ts := newTestServer(t, db, provider)
	defer ts.Close()
	token := registerUser(t, ts.URL, "upstream@example.com")
	seedLog(t, db, 1, dayOffset(0), 8000, 7.5, 2000)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/ai/suggestion", token, nil)
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["error"] != "ml service error: model not trained" {
		t.Errorf("expected upstream message, got %v", body["error"])
	}
}
