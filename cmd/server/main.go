package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"complyscan.app/engine/common/id"
	"complyscan.app/engine/common/llm"
	"complyscan.app/engine/common/logger"
	"complyscan.app/engine/common/otel"
	"complyscan.app/engine/core/config"
	"complyscan.app/engine/internal/engine"
	"complyscan.app/engine/internal/http/middleware"
	httprouter "complyscan.app/engine/internal/http/router"
	"complyscan.app/engine/internal/knowledge"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "engine starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	var cache *redis.Client
	if cfg.Cache.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		cache = redis.NewClient(redisOpts)
		if err := cache.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "redis unreachable, snapshot cache disabled", "error", err)
			cache = nil
		} else {
			slog.InfoContext(ctx, "redis connected")
		}
	}

	store := knowledge.NewStore(knowledge.StoreConfig{
		Fetcher: knowledge.NewHTTPFetcher(knowledge.FetcherConfig{
			BaseURL:    cfg.Knowledge.SourceURL,
			HTTPClient: &http.Client{Timeout: cfg.Knowledge.FetchTimeout},
		}),
		Cache:    cache,
		CacheTTL: cfg.Knowledge.CacheTTL,
	})

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, cfg.Knowledge.FetchTimeout)
	snapshot := store.Acquire(acquireCtx)
	cancelAcquire()
	slog.InfoContext(ctx, "knowledge base ready", "live", snapshot.IsLiveData)

	var backend llm.Client
	if cfg.LLM.Enabled() {
		backend, err = llm.New(llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to create llm client", "error", err)
			os.Exit(1)
		}
		slog.InfoContext(ctx, "llm backend configured", "provider", cfg.LLM.Provider, "model", backend.Model())
	} else {
		slog.InfoContext(ctx, "no llm api key set, running rule-based analysis only")
	}

	eng, err := engine.New(backend, store, engine.Config{
		MergeMode:        engine.MergeMode(cfg.Analysis.MergeMode),
		MaxDocumentChars: cfg.Analysis.MaxDocumentChars,
		MaxTokens:        cfg.Analysis.MaxTokens,
		BackendTimeout:   cfg.Analysis.BackendTimeout,
		DSARTimelineRule: cfg.Analysis.DSARTimelineRule,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create engine", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, eng, store)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      2 * cfg.Analysis.BackendTimeout,
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

	if cache != nil {
		if err := cache.Close(); err != nil {
			slog.ErrorContext(shutdownCtx, "redis close error", "error", err)
		}
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, eng *engine.Engine, store *knowledge.Store) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, eng, store)

	return router
}
