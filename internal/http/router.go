// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Streaming routes are never buffered or compressed
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/docs"
	"github.com/tbourn/latency-workshop-app/internal/config"
	"github.com/tbourn/latency-workshop-app/internal/http/handlers"
	"github.com/tbourn/latency-workshop-app/internal/http/middleware"
	"github.com/tbourn/latency-workshop-app/internal/llm"
	"github.com/tbourn/latency-workshop-app/internal/pubsub"
	"github.com/tbourn/latency-workshop-app/internal/reconcile"
	"github.com/tbourn/latency-workshop-app/internal/repo"
	"github.com/tbourn/latency-workshop-app/internal/services"
)

// Deps are the outbound collaborators the API needs besides the database.
type Deps struct {
	Generator llm.Generator    // completion provider (or the canned one)
	Scanner   services.Scanner // plagiarism provider
	Broker    pubsub.Broker    // scan events between webhooks and watchers
}

// streamingPaths matches the routes whose bodies are written incrementally.
var streamingPaths = []string{
	`/generations$`,
	`/scans/[^/]+/events$`,
	`/scans/[^/]+/ws$`,
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression,
// rate limiting, CORS and security headers, health, metrics and docs
// endpoints, and then mounts the API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip (streaming routes excluded)
//  8. Idempotency validator for scan requests (before rate limiter to allow
//     bypass on replay)
//  9. Rate limiter (per client, webhooks exempt, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"Idempotency-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression for JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs(streamingPaths)))

	// 8) Idempotency validation (before rate limiting)
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Routes: []string{http.MethodPost + " " + joinPath(apiBase, "/plagiarism-checks")},
		},
		func(ctx context.Context, clientID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, clientID, services.ScanRoute, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per client
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClient()).
		Exempt(joinPath(apiBase, "/webhooks/"), "/health", "/metrics")
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderClientID, middleware.HeaderIdempotencyKey},
		ExposeHeaders:    []string{"X-Request-ID", "X-Generation-ID", handlers.HeaderIdempotencyReplayed, "ETag"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs
	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = apiBase
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← db/providers/broker
	genSvc := &services.GenerationService{
		DB:             db,
		Generator:      deps.Generator,
		MaxPromptRunes: cfg.MaxPromptRunes,
	}
	scanSvc := &services.ScanService{
		DB:             db,
		Scanner:        deps.Scanner,
		Broker:         deps.Broker,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	watcher := reconcile.New(db, deps.Broker, cfg.ReconcileMaxWait)
	h := handlers.New(genSvc, scanSvc, watcher, handlers.Options{AllowedOrigins: cfg.CORS.AllowedOrigins})

	api := groupWithPrefix(r, apiBase)
	{
		// Generations
		api.POST("/generations", middleware.Streaming(), h.CreateGeneration)
		api.GET("/generations", h.ListGenerations)
		api.GET("/generations/:id", h.GetGeneration)
		api.PUT("/drafts/:id", h.ReviseDraft)

		// Scans
		api.POST("/plagiarism-checks", h.RequestPlagiarismCheck)
		api.GET("/scans/:scanId", h.GetScan)
		api.GET("/scans/:scanId/events", middleware.Streaming(), h.StreamScanEvents)
		api.GET("/scans/:scanId/ws", middleware.Streaming(), h.ScanWebSocket)

		// Provider callbacks
		api.POST("/webhooks/scans/:scanId/:status", h.ScanStatusWebhook)
		api.POST("/webhooks/exports/:scanId/:resultId", h.ExportWebhook)
		api.POST("/webhooks/noop", h.NoopWebhook)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}

func joinPath(prefix, p string) string {
	if prefix == "" || prefix == "/" {
		return p
	}
	return prefix + p
}
