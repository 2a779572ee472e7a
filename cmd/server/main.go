package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"smartrecover.dev/engine/common/id"
	"smartrecover.dev/engine/common/logger"
	"smartrecover.dev/engine/common/otel"
	"smartrecover.dev/engine/internal/cache"
	"smartrecover.dev/engine/internal/config"
	"smartrecover.dev/engine/internal/connector"
	httpmiddleware "smartrecover.dev/engine/internal/http/middleware"
	httprouter "smartrecover.dev/engine/internal/http/router"
	"smartrecover.dev/engine/internal/llm"
	"smartrecover.dev/engine/internal/orchestrator"
	"smartrecover.dev/engine/internal/promptlog"
	"smartrecover.dev/engine/internal/store"
)

func main() {
	fmt.Printf("%s\n", banner)
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, otel.Config{
		Endpoint:       cfg.OTel.Endpoint,
		Headers:        cfg.OTel.Headers,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.OTel.ServiceVersion,
	})
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(logger.Config{
		Level:       cfg.Logging.Level,
		Production:  cfg.IsProduction(),
		EnableOTel:  cfg.Logging.EnableTracing && telemetry != nil,
		OTelService: cfg.OTel.ServiceName,
		File:        cfg.Logging.File,
		MaxSizeMB:   cfg.Logging.MaxSizeMB,
		MaxBackups:  cfg.Logging.MaxBackups,
	})

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "smartrecover starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	incidents := store.NewIncidentStore()
	if cfg.IncidentConnector.IncidentsCSVPath != "" {
		if err := incidents.LoadCSV(ctx, cfg.IncidentConnector.IncidentsCSVPath); err != nil {
			slog.ErrorContext(ctx, "failed to load incidents csv", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "incidents loaded", "count", len(incidents.List()))
	}

	incidentConnector, err := connector.NewIncidentConnector(ctx, cfg.IncidentConnector, incidents)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build incident connector", "error", err)
		os.Exit(1)
	}

	kbConnector, err := connector.NewKnowledgeBaseConnector(ctx, cfg.KnowledgeBase)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build knowledge base connector", "error", err)
		os.Exit(1)
	}

	promptLogStore := store.NewPromptLogStore(cfg.PromptLogs.MaxEntries)

	llmManager, err := llm.NewManager(llm.Config{
		Provider:          cfg.LLM.Provider,
		Model:             cfg.LLM.Model,
		Temperature:       cfg.LLM.Temperature,
		OpenAIAPIKey:      cfg.LLM.OpenAIAPIKey,
		OpenAIBaseURL:     cfg.LLM.OpenAIBaseURL,
		GeminiAPIKey:      cfg.LLM.GeminiAPIKey,
		GeminiBaseURL:     cfg.LLM.GeminiBaseURL,
		OllamaBaseURL:     cfg.LLM.OllamaBaseURL,
		BlockingTimeout:   cfg.LLM.BlockingTimeout,
		StreamIdleTimeout: cfg.LLM.StreamIdleTimeout,
	}, promptLogStore)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build llm manager", "error", err)
		os.Exit(1)
	}

	if cfg.PromptLogs.MirrorToRedis {
		redisOpts, err := redis.ParseURL(cfg.PromptLogs.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		mirror := promptlog.NewMirror(redisClient, cfg.PromptLogs.RedisStream, slog.Default())
		llmManager.SetMirror(mirror)
		defer mirror.Close()
		slog.InfoContext(ctx, "prompt log mirroring to redis", "stream", cfg.PromptLogs.RedisStream)
	}

	// A prompt-less graph exists only to read each agent's default_prompt for
	// seeding the prompt store; the real graph is built once prompts are ready.
	defaultPrompts := orchestrator.NewGraph(incidentConnector, kbConnector, nil, nil, nil, nil, cfg.Agents).DefaultPrompts()
	prompts, err := store.NewPromptStore(cfg.PromptsPath, defaultPrompts)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build prompt store", "error", err)
		os.Exit(1)
	}

	exclusions := store.NewExclusionStore()
	graph := orchestrator.NewGraph(incidentConnector, kbConnector, llmManager, cache.New(cfg.Cache.TTL), exclusions, prompts, cfg.Agents)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	services := &httprouter.Services{
		Incidents:  incidents,
		Graph:      graph,
		Exclusions: exclusions,
		Prompts:    prompts,
		PromptLog:  promptLogStore,
		LLMManager: llmManager,
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *httprouter.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates a span → TraceID enriches context with its
	// own id → Recovery catches panics with that context → Logger logs with
	// trace context.
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(httpmiddleware.TraceID())
	router.Use(httpmiddleware.Recovery())
	router.Use(httpmiddleware.Logger())

	httprouter.SetupRoutes(router.Group("/api/v1"), services, httprouter.RouterConfig{
		AdminAPIKey: cfg.AdminAPIKey,
	})

	return router
}

const banner = `
 ____                       _   ____
/ ___| _ __ ___   __ _ _ __| |_|  _ \ ___  ___ _____   _____ _ __
\___ \| '_ ' _ \ / _' | '__| __| |_) / _ \/ __/ _ \ \ / / _ \ '__|
 ___) | | | | | | (_| | |  | |_|  _ <  __/ (_| (_) \ V /  __/ |
|____/|_| |_| |_|\__,_|_|   \__|_| \_\___|\___\___/ \_/ \___|_|
`
