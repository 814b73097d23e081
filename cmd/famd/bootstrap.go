package main

import (
	"context"
	"fmt"
	"log/slog"

	"famcontents/internal/api"
	"famcontents/internal/config"
	"famcontents/internal/daemon"
	"famcontents/internal/logging"
	"famcontents/internal/services/llm"
	"famcontents/internal/store"
)

func newBackend(ctx context.Context, cfg *config.Config) (*llm.Client, error) {
	return llm.New(ctx, llm.Config{
		Provider:       cfg.LLM.Provider,
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
}

func buildDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*daemon.Daemon, error) {
	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	backend, err := newBackend(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if !backend.Configured() {
		logging.WarnWithContext(logger, "generative backend not configured", "backend_unconfigured",
			logging.String("provider", backend.Name()),
			logging.String(logging.FieldErrorHint, "set llm.api_key or the provider API key environment variable"),
			logging.String(logging.FieldImpact, "every task returns its deterministic fallback body"),
		)
	}
	svc := api.NewService(cfg, st, backend, logger)
	d, err := daemon.New(cfg, st, svc, logger)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	return d, nil
}
