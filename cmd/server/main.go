// Command server runs the latency workshop API: streamed draft generation,
// plagiarism scan requests, the provider webhooks and the scan watchers.
//
//	@title						Latency Workshop API
//	@version					1.0
//	@description				Streams drafts from a completion provider and checks them for plagiarism. Scan results arrive through provider webhooks and are pushed to watchers over SSE or WebSocket.
//	@BasePath					/api/v1
//	@accept						json
//	@produce					json
//	@securityDefinitions.apikey	ClientID
//	@in							header
//	@name						X-Client-ID
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/latency-workshop-app/internal/config"
	"github.com/tbourn/latency-workshop-app/internal/copyleaks"
	httpapi "github.com/tbourn/latency-workshop-app/internal/http"
	"github.com/tbourn/latency-workshop-app/internal/llm"
	"github.com/tbourn/latency-workshop-app/internal/observability"
	"github.com/tbourn/latency-workshop-app/internal/pubsub"
	"github.com/tbourn/latency-workshop-app/internal/repo"
	"github.com/tbourn/latency-workshop-app/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("could not read .env")
	}
	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.OTEL.ServiceName, cfg.LogLevel, cfg.LogPretty)

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.Setup(ctx, cfg.OTEL, observability.Resource{
		Version:    version,
		Deployment: observability.DeploymentOf(cfg),
	})
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}

	broker, err := newBroker(cfg)
	if err != nil {
		return err
	}
	defer broker.Close()

	if cfg.Copyleaks.Email == "" || cfg.Copyleaks.APIKey == "" {
		log.Warn().Msg("COPYLEAKS_EMAIL or COPYLEAKS_API_KEY not set; scan requests will fail")
	}
	scanner := copyleaks.New(copyleaks.Config{
		APIURL:      cfg.Copyleaks.APIURL,
		LoginURL:    cfg.Copyleaks.LoginURL,
		Email:       cfg.Copyleaks.Email,
		APIKey:      cfg.Copyleaks.APIKey,
		WebhookBase: cfg.WebhookBaseURL(),
		Sandbox:     !cfg.IsPublic(),
		Expiration:  cfg.Copyleaks.ExpiryHrs,
	}, copyleaks.WithHTTPClient(&http.Client{Timeout: cfg.Copyleaks.Timeout}))

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, httpapi.Deps{
		Generator: llm.New(cfg.OpenAI),
		Scanner:   scanner,
		Broker:    broker,
	}, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", version).
			Bool("sandbox", !cfg.IsPublic()).
			Str("webhook_base", cfg.WebhookBaseURL()).
			Msg("listening")
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

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// Open watchers and generation streams are hijacked or long-lived;
	// Shutdown does not wait for hijacked connections.
	if err := srv.Shutdown(sctx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown incomplete")
		return srv.Close()
	}
	return nil
}

// newBroker connects to NATS when NATS_URL is set, so several server
// instances share scan events. Otherwise events stay in process.
func newBroker(cfg config.Config) (pubsub.Broker, error) {
	if cfg.NATSURL == "" {
		return pubsub.NewMemoryBroker(), nil
	}
	b, err := pubsub.NewNATSBroker(cfg.NATSURL, cfg.OTEL.ServiceName)
	if err != nil {
		return nil, err
	}
	log.Info().Msg("nats broker connected")
	return b, nil
}
