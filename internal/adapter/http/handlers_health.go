package adapthttp

import (
	"errors"
	"net/http"

	"fittrack/internal/app"
)

func (s *Server) handleAddLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Pointer fields distinguish missing keys from zero values.
	var body struct {
		Steps      *int64   `json:"steps"`
		SleepHours *float64 `json:"sleep_hours"`
		Calories   *int64   `json:"calories"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "invalid request")
		return
	}
	if body.Steps == nil || body.SleepHours == nil || body.Calories == nil {
		writeErrorMsg(w, http.StatusBadRequest, "Please provide all required fields: steps, sleep_hours, calories")
		return
	}

	user := userFromContext(r)
	log, created, err := s.health.AddLog(r.Context(), user.ID, *body.Steps, *body.SleepHours, *body.Calories)
	if errors.Is(err, app.ErrNegativeMetric) {
		writeErrorMsg(w, http.StatusBadRequest, "Values cannot be negative")
		return
	}
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	status := http.StatusOK
	message := "Health log updated successfully"
	if created {
		status = http.StatusCreated
		message = "Health log added successfully"
	}
	writeJSON(w, status, map[string]any{
		"success": true,
		"message": message,
		"log":     log,
	})
}

func (s *Server) handleGetLogs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	limit := intQuery(r, "limit", app.DefaultLogWindow)

	logs, err := s.health.RecentLogs(r.Context(), user.ID, limit)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(logs),
		"logs":    logs,
	})
}

func (s *Server) handleLatestLog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	log, err := s.health.LatestLog(r.Context(), user.ID)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	if log == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"log":     nil,
			"message": "No logs found",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"log":     log,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	days := intQuery(r, "days", app.DefaultStatsDays)

	stats, err := s.health.Stats(r.Context(), user.ID, days)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	limit := intQuery(r, "limit", app.DefaultLogWindow)

	insights, err := s.health.GetInsights(r.Context(), user.ID, limit)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"insights": insights,
	})
}
