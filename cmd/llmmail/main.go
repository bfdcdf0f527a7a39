// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the LLM Mail campaign server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elyriond/llmmail/internal/ai"
	"github.com/elyriond/llmmail/internal/cache"
	"github.com/elyriond/llmmail/internal/campaign"
	"github.com/elyriond/llmmail/internal/config"
	"github.com/elyriond/llmmail/internal/creative"
	"github.com/elyriond/llmmail/internal/database"
	"github.com/elyriond/llmmail/internal/dressipi"
	"github.com/elyriond/llmmail/internal/handlers"
	"github.com/elyriond/llmmail/internal/imagegen"
	"github.com/elyriond/llmmail/internal/middleware"
	"github.com/elyriond/llmmail/internal/personalize"
	"github.com/elyriond/llmmail/internal/prompts"
	"github.com/elyriond/llmmail/internal/router"
	"github.com/elyriond/llmmail/internal/scanner"
	"github.com/elyriond/llmmail/internal/storage"
	"github.com/elyriond/llmmail/internal/store"
)

func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Structured logger: text in development, JSON otherwise.
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Default look & feel preset (no-op once any preset exists).
	if err := database.Seed(db); err != nil {
		slog.Error("failed to seed database", "error", err)
		os.Exit(1)
	}

	// AI providers, wrapped with retries for transient failures.
	registry := ai.NewRegistry(cfg.AIProvider, cfg.ImageProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, ImageModel: cfg.OpenAIImageModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":  {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, ImageModel: cfg.GeminiImageModel, BaseURL: cfg.GeminiBaseURL},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
	})
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"image", registry.ActiveImageName(),
		"available", registry.Available(),
		"moderation", registry.HasModerator(),
	)

	policy := ai.RetryPolicy{Attempts: cfg.RetryAttempts, BaseDelay: time.Second, MaxDelay: 10 * time.Second}
	text := ai.RetryText(registry, policy)
	images := ai.RetryImage(registry, policy)

	// Generated image storage: S3 when configured, else a local directory
	// served under /images.
	var artifacts storage.ArtifactStore
	storageKind := "local"
	imagesDir := ""
	s3Store, err := storage.NewS3(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicURL)
	switch {
	case err != nil:
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	case s3Store != nil:
		artifacts = s3Store
		storageKind = "s3"
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	default:
		local, err := storage.NewLocal(cfg.ImagesDir, "/images")
		if err != nil {
			slog.Error("failed to initialize image directory", "error", err)
			os.Exit(1)
		}
		artifacts = local
		imagesDir = cfg.ImagesDir
		slog.Warn("s3 storage not configured, serving images from disk", "dir", cfg.ImagesDir)
	}

	promptStore := prompts.Default(cfg.PromptsDir)
	imageGen := imagegen.New(images, artifacts)
	content := creative.New(text, promptStore)

	// Dressipi client, with a Valkey response cache when configured.
	dressipiOpts := []dressipi.Option{
		dressipi.WithTimeout(cfg.DressipiTimeout),
		dressipi.WithRetry(cfg.DressipiRetries, 500*time.Millisecond),
	}
	var flusher handlers.CacheFlusher
	if cfg.ValkeyHost != "" {
		valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
		if err != nil {
			slog.Error("failed to connect to valkey", "error", err)
			os.Exit(1)
		}
		defer valkeyClient.Close()

		responses := cache.NewResponseCache(valkeyClient, "dressipi:", cache.DefaultResponseTTL)
		dressipiOpts = append(dressipiOpts, dressipi.WithCache(responses))
		flusher = responses
	} else {
		slog.Warn("valkey not configured, dressipi responses are not cached")
	}
	recommender := dressipi.New(dressipiOpts...)

	campaignOpts := []campaign.Option{campaign.WithRecommender(recommender)}
	var moderator campaign.Moderator
	if registry.HasModerator() {
		moderator = registry
		campaignOpts = append(campaignOpts, campaign.WithModerator(registry))
	}
	pipeline := campaign.New(content, imageGen, campaignOpts...)

	// Initialize data stores.
	templateStore := store.NewEmailTemplateStore(db)
	presetStore := store.NewLookAndFeelStore(db)
	profileStore := store.NewClientProfileStore(db)

	limiter := middleware.NewRateLimiter(cfg.GenerateRateLimit, time.Minute)
	defer limiter.Stop()

	r := router.New(router.Handlers{
		Campaign:  handlers.NewCampaign(pipeline, profileStore),
		Images:    handlers.NewImages(imageGen, moderator),
		Dressipi:  handlers.NewDressipi(recommender, flusher),
		Templates: handlers.NewTemplates(templateStore, presetStore, personalize.New()),
		Settings:  handlers.NewSettings(profileStore, scanner.New(text, promptStore, nil)),
		Status:    handlers.NewStatus(registry, storageKind, flusher != nil),
	}, router.Options{
		CORSOrigins: cfg.CORSOrigins,
		Limiter:     limiter,
		ImagesDir:   imagesDir,
	})

	// WriteTimeout is disabled: streamed campaigns run for minutes and the
	// pipeline bounds each provider call itself.
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
