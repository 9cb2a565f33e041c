package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/OnePunchManz/sumi-backend/internal/analysis"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/conversations"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/gateway"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/model"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/prompts"
	"github.com/OnePunchManz/sumi-backend/internal/analysis/repo"
	"github.com/OnePunchManz/sumi-backend/internal/core"
	"github.com/OnePunchManz/sumi-backend/internal/httpapi"
	"github.com/OnePunchManz/sumi-backend/internal/session"
	logx "github.com/OnePunchManz/sumi-backend/pkg/logger"
	pkgredis "github.com/OnePunchManz/sumi-backend/pkg/redis"
)

// AppConfig defines all configurable parameters of the service, sourced from
// environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Server model.ServerConfig
	Redis  pkgredis.Config

	// Analysis
	Reasoning    model.ReasoningConfig
	Conversation model.ConversationConfig
	Session      model.SessionConfig
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(cfg.Environment)})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg AppConfig) error {
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return fmt.Errorf("initialise redis client: %w", err)
	}
	defer rdb.Close()
	logx.Info().Msg("Connected to Redis successfully")

	directive, err := prompts.RenderSystemDirective(ctx, cfg.Conversation)
	if err != nil {
		return err
	}

	gw, err := newGateway(ctx, cfg.Reasoning)
	if err != nil {
		return err
	}

	var manager *conversations.MessagesManager
	if cfg.Conversation.Persist {
		manager = conversations.NewMessagesManager(repo.NewRedisConversationRepository(rdb, cfg.Conversation.TTL))
	}

	binding := conversations.NewBinding(directive)
	analyzer, err := analysis.New(analysis.Config{
		Binding: binding,
		Gateway: gw,
		Manager: manager,
		Params:  cfg.Reasoning.Params(),
	})
	if err != nil {
		return err
	}
	go binding.Run(ctx, cfg.Session.SweepInterval, cfg.Session.TTL)

	handlers := &httpapi.Handlers{
		Analyzer:  analyzer,
		Sessions:  session.NewRedisStore(rdb, cfg.Session.TTL),
		Session:   cfg.Session,
		BodyLimit: cfg.Server.MaxBodyBytes,
	}
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           httpapi.NewRouter(handlers, cfg.Server.AllowedOrigin),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().
			Int("port", cfg.Server.Port).
			Str("provider", cfg.Reasoning.Provider).
			Str("model", cfg.Reasoning.Model).
			Bool("persist", cfg.Conversation.Persist).
			Msg("Server is running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logx.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newGateway(ctx context.Context, cfg model.ReasoningConfig) (gateway.Gateway, error) {
	if cfg.APIKey() == "" {
		return nil, fmt.Errorf("missing API key for reasoning provider %q", cfg.Provider)
	}

	switch cfg.Provider {
	case model.ProviderOpenAI:
		return gateway.NewOpenAI(cfg.BaseURL, cfg.APIKey(), cfg.Timeout), nil
	case model.ProviderGemini:
		return gateway.NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q", cfg.Provider)
	}
}
