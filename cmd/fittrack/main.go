package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	adapthttp "fittrack/internal/adapter/http"
	"fittrack/internal/adapter/mlservice"
	"fittrack/internal/adapter/postgres"
	"fittrack/internal/app"
	"fittrack/internal/config"
	"fittrack/internal/logger"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("db open", "err", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	healthSvc := app.NewHealthService(db)
	authSvc := app.NewAuthService(db, []byte(cfg.JWTSecret), cfg.TokenTTL)
	suggestionSvc := app.NewSuggestionService(db, mlservice.New(cfg.MLServiceURL))

	oidcConfig, err := buildOIDC(cfg)
	if err != nil {
		slog.Error("oidc setup", "err", err)
		os.Exit(1)
	}

	h := adapthttp.New(healthSvc, suggestionSvc, authSvc, oidcConfig, cfg.WebDir, cfg.Production()).Handler()
	slog.Info("listening", "addr", cfg.Addr, "env", cfg.Env, "sso", oidcConfig.Enabled)
	if err := http.ListenAndServe(cfg.Addr, h); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server", "err", err)
		os.Exit(1)
	}
}

func buildOIDC(cfg *config.Config) (adapthttp.OIDCConfig, error) {
	if !cfg.OIDC.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(context.Background(), cfg.OIDC.IssuerURL)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
