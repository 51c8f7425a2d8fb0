package adapthttp

import (
	"errors"
	"net/http"

	"fittrack/internal/app"
)

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	user := userFromContext(r)
	result, err := s.suggestions.GetSuggestion(r.Context(), user.ID)
	if errors.Is(err, app.ErrNoHealthLog) {
		writeErrorMsg(w, http.StatusNotFound, "No health log found")
		return
	}
	if err != nil {
		// Upstream failures surface the ML service's message.
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"suggestions": result.Suggestions,
		"model_used":  result.ModelUsed,
		"based_on":    result.BasedOn,
	})
}
