package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/contractkit/playbookd/internal/analysis"
	"github.com/contractkit/playbookd/internal/api"
	"github.com/contractkit/playbookd/internal/config"
	"github.com/contractkit/playbookd/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Track provider call latency across the process lifetime.
	stats := analysis.NewCallStats(15 * time.Minute)

	// Anthropic is preferred when both providers are configured.
	var client analysis.Client
	if cfg.AnthropicAPIKey != "" {
		c := analysis.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel)
		c.Stats = stats
		client = c
	} else {
		c := analysis.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		c.Stats = stats
		client = c
	}

	runner := pipeline.NewRunner(cfg, client, nil, log)
	runner.Start(ctx)

	srv := api.NewServer(runner, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		runner.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		client.Close()
	}()

	log.Info("starting playbookd", "port", cfg.Port, "provider", client.Provider(), "model", client.Model())
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
