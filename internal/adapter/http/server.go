package adapthttp

import (
	"net/http"

	"fittrack/internal/app"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig carries the optional SSO login configuration.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config *oauth2.Config
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	health      *app.HealthService
	suggestions *app.SuggestionService
	auth        *app.AuthService
	oidcConfig  OIDCConfig
	webDir      string
	production  bool
	disableAuth bool
}

// New creates a Server wired to the given application services.
func New(hs *app.HealthService, ss *app.SuggestionService, as *app.AuthService, oidcConfig OIDCConfig, webDir string, production bool) *Server {
	return &Server{
		health:      hs,
		suggestions: ss,
		auth:        as,
		oidcConfig:  oidcConfig,
		webDir:      webDir,
		production:  production,
	}
}

// WithoutAuth disables bearer-token checks; requests run as a fixed test
// user. For tests only.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/auth/register", s.handleRegister)
	api.HandleFunc("/auth/login", s.handleLogin)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)
	api.Handle("/auth/me", s.authMiddleware(http.HandlerFunc(s.handleMe)))

	protected := http.NewServeMux()
	protected.HandleFunc("/health/add-log", s.handleAddLog)
	protected.HandleFunc("/health/get-logs", s.handleGetLogs)
	protected.HandleFunc("/health/latest", s.handleLatestLog)
	protected.HandleFunc("/health/stats", s.handleStats)
	protected.HandleFunc("/health/insights", s.handleInsights)
	protected.HandleFunc("/ai/suggestion", s.handleSuggestion)

	guarded := s.authMiddleware(protected)
	api.Handle("/health/", guarded)
	api.Handle("/ai/", guarded)

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return withNoCache(s.loggingMiddleware(root))
}
