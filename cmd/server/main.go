// Package main provides the coursebot server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/chat"
	"github.com/sejong-careerpath/coursebot-go/internal/config"
	"github.com/sejong-careerpath/coursebot-go/internal/index"
	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
	"github.com/sejong-careerpath/coursebot-go/internal/respond"
	"github.com/sejong-careerpath/coursebot-go/internal/search"
	"github.com/sejong-careerpath/coursebot-go/internal/sentry"
)

// HTTP server timeouts. Chat completions can take most of the LLM
// timeout budget, so the write timeout leaves ample headroom.
const (
	httpReadTimeout  = 10 * time.Second
	httpWriteTimeout = 60 * time.Second
	httpIdleTimeout  = 90 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	log.Info("Starting coursebot server")

	if err := sentry.Initialize(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.SentryEnvironment,
	}); err != nil {
		log.WithError(err).Warn("Failed to initialize Sentry, error tracking disabled")
	}
	defer sentry.Flush(2 * time.Second)

	// Prometheus registry with runtime collectors
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(collectors.NewBuildInfoCollector())
	m := metrics.New(registry)
	log.Info("Metrics initialized")

	// Snapshot store keeps the built index across restarts.
	store, err := catalog.NewStore(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open snapshot store")
	}
	defer func() { _ = store.Close() }()
	log.WithField("path", store.Path()).Info("Snapshot store opened")

	fetcher := catalog.NewFetcher(cfg.CatalogURL, cfg.FetchTimeout, cfg.FetchMaxRetries, cfg.FetchInitialDelay)
	loader := index.NewLoader(fetcher, store, log, m)
	engine := search.NewEngine(loader, log, m)

	responder := buildResponder(cfg, log, m)
	if responder != nil {
		defer func() { _ = responder.Close() }()
	} else {
		log.Info("No LLM provider configured, chat replies are locally generated")
	}

	history := chat.NewHistory(cfg.HistoryTTL, cfg.MaxHistoryTurns)
	chatService := chat.NewService(engine, respond.NewGenerator(), responder, history, cfg.LLMTimeout, log, m)

	// Warm the catalog so the first user request does not pay for the
	// fetch and index build. Failures are tolerated; the next request
	// triggers another load.
	warmupCtx, warmupCancel := context.WithCancel(context.Background())
	defer warmupCancel()
	go func() {
		if _, err := loader.Load(warmupCtx); err != nil {
			log.WithError(err).Warn("Catalog warmup failed")
		}
	}()

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(log))

	a := &api{
		chat:    chatService,
		search:  engine,
		loader:  loader,
		log:     log.WithModule("http"),
		metrics: m,
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.GlobalRateRPS), cfg.GlobalRateBurst)
	setupRoutes(router, a, registry, cfg, limiter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  httpReadTimeout,
		WriteTimeout: httpWriteTimeout,
		IdleTimeout:  httpIdleTimeout,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	warmupCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}

	log.Info("Server stopped")
}

// buildResponder wires the LLM provider chain from configuration:
// Gemini primary, Groq fallback, either alone when only one key is
// set, nil when neither is.
func buildResponder(cfg *config.Config, log *logger.Logger, m *metrics.Metrics) chat.Responder {
	gemini, err := chat.NewGeminiResponder(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.WithError(err).Warn("Failed to create Gemini responder")
		gemini = nil
	}
	groq, err := chat.NewGroqResponder(cfg.GroqAPIKey, cfg.GroqModel)
	if err != nil {
		log.WithError(err).Warn("Failed to create Groq responder")
		groq = nil
	}

	switch {
	case gemini != nil && groq != nil:
		log.Info("LLM providers configured: gemini with groq fallback")
		return chat.NewFallbackResponder(gemini, groq, chat.DefaultRetryConfig, log, m)
	case gemini != nil:
		log.Info("LLM provider configured: gemini")
		return chat.NewFallbackResponder(gemini, nil, chat.DefaultRetryConfig, log, m)
	case groq != nil:
		log.Info("LLM provider configured: groq")
		return chat.NewFallbackResponder(groq, nil, chat.DefaultRetryConfig, log, m)
	default:
		return nil
	}
}
