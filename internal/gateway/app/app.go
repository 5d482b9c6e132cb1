package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"llmanim/internal/gateway/config"
	"llmanim/internal/gateway/handler/rpc"
	"llmanim/internal/gateway/server"
	"llmanim/internal/gateway/service/editor"
	"llmanim/internal/generation"
	"llmanim/internal/llm"
	"llmanim/internal/logging"
	"llmanim/internal/version"
)

type App struct {
	server *server.Server
	llm    llm.LLMClient
	log    *zap.Logger
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return NewWithConfig(ctx, cfg, log)
}

// NewWithConfig wires every component from cfg.
func NewWithConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	// Dependencies
	client, err := llm.New(ctx, llm.Options{
		Provider:    cfg.LLM.Provider,
		Model:       cfg.LLM.Model,
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		RPS:         cfg.LLM.RPS,
		Burst:       cfg.LLM.Burst,
		MaxAttempts: cfg.LLM.MaxAttempts,
		CacheSize:   cfg.LLM.CacheSize,
		CacheTTL:    cfg.LLM.CacheTTL,
		Logger:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build llm client: %w", err)
	}
	log.Info("llm client ready", zap.String("client", client.Name()))

	store := version.NewStore(version.WithLogger(log))
	if _, err := store.Create(""); err != nil {
		return nil, fmt.Errorf("failed to create initial version: %w", err)
	}
	svc := editor.New(store, generation.NewLLM(client, log),
		editor.WithLogger(log),
		editor.WithSegmentCacheSize(cfg.SegmentCacheSize),
	)

	versionHandler := rpc.NewVersionHandler(svc, log)
	watchHandler := rpc.NewWatchHandler(store, log)

	// Routing & Server
	router := server.NewRouter(versionHandler, watchHandler, cfg.AllowedOrigin)
	srv := server.New(cfg.Port, router, log)

	return &App{server: srv, llm: client, log: log}, nil
}

func (a *App) Logger() *zap.Logger { return a.log }

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	return errors.Join(err, a.llm.Close())
}
