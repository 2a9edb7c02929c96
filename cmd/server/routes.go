// Package main provides the coursebot server entry point.
package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
	"github.com/sejong-careerpath/coursebot-go/internal/chat"
	"github.com/sejong-careerpath/coursebot-go/internal/config"
	"github.com/sejong-careerpath/coursebot-go/internal/index"
	"github.com/sejong-careerpath/coursebot-go/internal/logger"
	"github.com/sejong-careerpath/coursebot-go/internal/metrics"
	"github.com/sejong-careerpath/coursebot-go/internal/search"
	"github.com/sejong-careerpath/coursebot-go/internal/sentry"
)

// api bundles the handlers' dependencies.
type api struct {
	chat    *chat.Service
	search  *search.Engine
	loader  *index.Loader
	log     *logger.Logger
	metrics *metrics.Metrics
}

// setupRoutes configures all HTTP routes. The rate limiter guards the
// /api group only; health, readiness and metrics endpoints stay
// unthrottled so probes and scrapes keep working under load.
func setupRoutes(router *gin.Engine, a *api, registry *prometheus.Registry, cfg *config.Config, limiter *rate.Limiter) {
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness means the catalog has been loaded and searches can be
	// answered without waiting on the upstream fetch.
	readyHandler := func(c *gin.Context) {
		snapshot := a.loader.Cached()
		if snapshot == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "catalog not loaded",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":        "ready",
			"records":       len(snapshot.Records),
			"index_entries": snapshot.Index.Entries(),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// Prometheus metrics endpoint, optionally behind Basic Auth.
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if cfg.MetricsPassword != "" {
		authorized := router.Group("/", gin.BasicAuth(gin.Accounts{
			cfg.MetricsUsername: cfg.MetricsPassword,
		}))
		authorized.GET("/metrics", metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}

	apiGroup := router.Group("/api")
	apiGroup.Use(rateLimitMiddleware(limiter, a.metrics))
	apiGroup.GET("/search", a.handleSearch)
	apiGroup.POST("/chat", a.handleChat)
}

// handleSearch runs a keyword search and returns the ranked records.
func (a *api) handleSearch(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		a.metrics.RecordHTTPError("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	result, err := a.search.Search(c.Request.Context(), query)
	if err != nil {
		a.replyCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":    result.Query,
		"intent":   result.Intent,
		"keywords": result.Keywords,
		"count":    len(result.Records),
		"records":  result.Records,
	})
}

type chatRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message" binding:"required"`
}

// handleChat answers one chat message. A missing conversation ID
// starts a new conversation; the assigned ID is echoed back so the
// client can thread follow-up questions.
func (a *api) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.RecordHTTPError("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		a.metrics.RecordHTTPError("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if req.ConversationID == "" {
		req.ConversationID = uuid.NewString()
	}

	reply, err := a.chat.Chat(c.Request.Context(), req.ConversationID, req.Message)
	if err != nil {
		a.replyCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": req.ConversationID,
		"reply":           reply,
	})
}

// replyCatalogError maps a failed catalog load to a 503 with a
// user-facing retry hint; anything else is an internal error.
func (a *api) replyCatalogError(c *gin.Context, err error) {
	if errors.Is(err, catalog.ErrCatalogUnavailable) {
		a.metrics.RecordHTTPError("catalog_unavailable")
		sentry.CaptureExceptionWithContext(c.Request.Context(), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "강의 정보를 불러오지 못했어요. 잠시 후 다시 시도해 주세요.",
		})
		return
	}

	a.metrics.RecordHTTPError("internal")
	sentry.CaptureExceptionWithContext(c.Request.Context(), err)
	a.log.WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
