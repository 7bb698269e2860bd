// cmd/lead-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	awsclient "lead-intake/internal/common/aws"
	"lead-intake/internal/common/camunda"
	"lead-intake/internal/common/config"
	"lead-intake/internal/common/database"
	"lead-intake/internal/common/logger"
	"lead-intake/internal/common/observability"
	"lead-intake/internal/common/ratelimit"
	"lead-intake/internal/leads"
	"lead-intake/internal/notify"
	"lead-intake/internal/server"
	"lead-intake/internal/sinks/searchindex"
	"lead-intake/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting lead intake API...",
		zap.String("environment", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	obs, err := observability.New(cfg.Observability.ServiceName, cfg.Observability.SampleRatio)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, continuing without it", zap.Error(err))
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Primary store: PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(ctx, cfg.Database.Postgres)
		return err
	}, 10, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Redis-backed rate limiter (optional, fails open) ---
	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		rdb, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("invalid redis configuration", zap.Error(err))
		}
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			zapLog.Warn("redis unreachable, rate limiter will fail open", zap.Error(err))
		}
		limiter = ratelimit.NewLimiter(rdb.Client, "leads", cfg.RateLimit.Requests,
			config.GetDuration(cfg.RateLimit.Window), log)
		zapLog.Info("Rate limiting enabled",
			zap.Int("requests", cfg.RateLimit.Requests),
			zap.Int("windowMs", cfg.RateLimit.Window),
		)
	}

	deps := sinkDeps{}

	// --- Elasticsearch (optional) ---
	if cfg.Database.Elasticsearch.Enabled() {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			zapLog.Warn("elasticsearch client init failed, search-index sink disabled", zap.Error(err))
		} else {
			index := cfg.Database.Elasticsearch.Index
			if created, err := es.EnsureIndex(ctx, index, searchindex.IndexMapping); err != nil {
				zapLog.Warn("elasticsearch index check failed, indexing will be attempted per request",
					zap.String("index", index), zap.Error(err))
			} else if created {
				zapLog.Info("Elasticsearch index created", zap.String("index", index))
			}
			deps.search = es.Client
		}
	}

	// --- Zeebe (optional); one attempt per lead ---
	if cfg.Camunda.BrokerAddress != "" {
		zeebe, err := camunda.NewClient(camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			DialTimeout:            10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		if err != nil {
			zapLog.Warn("zeebe unavailable, workflow sink disabled", zap.Error(err))
		} else {
			defer zeebe.Close()
			deps.workflow = zeebe
			zapLog.Info("Zeebe client connected successfully")
		}
	}

	// --- AWS SNS (optional) ---
	if cfg.Integrations.AWS.SNS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.Integrations.AWS.Region)
		if err != nil {
			zapLog.Warn("aws config load failed, sms-alert sink disabled", zap.Error(err))
		} else {
			deps.sms = awsclient.NewSNSClient(awsCfg)
		}
	}

	// --- Email provider and templates ---
	deps.email, err = notify.NewSenderFromConfig(ctx, cfg, log)
	if err != nil {
		zapLog.Warn("email provider init failed, email sinks disabled", zap.Error(err))
		deps.email = nil
	}
	deps.catalog, err = notify.LoadCatalog()
	if err != nil {
		zapLog.Fatal("email template catalog is invalid", zap.Error(err))
	}

	sinks, err := buildSinks(cfg, deps, log)
	if err != nil {
		zapLog.Fatal("sink configuration failed", zap.Error(err))
	}

	orchestrator, err := leads.NewOrchestrator(
		leads.NewPostgresStore(pg.DB, log),
		sinks,
		log,
		leads.WithSinkTimeout(config.GetDuration(cfg.Leads.SinkTimeout)),
		leads.WithObservability(obs),
	)
	if err != nil {
		zapLog.Fatal("orchestrator init failed", zap.Error(err))
	}

	reg := loadRegistry(cfg.Observability.RegistryPath, zapLog)

	router := server.NewRouter(&server.Config{
		Logger:         log,
		Leads:          server.NewLeadHandler(leads.NewValidator(leads.PolicyFromConfig(cfg.Leads)), orchestrator, cfg.Server.MaxBodyBytes, log),
		Health:         server.NewHealthHandler(pg.DB, orchestrator, reg, log),
		Limiter:        limiter,
		MetricsHandler: promhttp.Handler(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadTimeout:       config.GetDuration(cfg.Server.ReadTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		zapLog.Info("Lead API listening", zap.String("address", cfg.Server.Address), zap.Int("sinks", len(sinks)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error during HTTP shutdown", zap.Error(err))
	}

	zapLog.Info("Lead API stopped gracefully")
}

// loadRegistry falls back to an empty catalog so a missing file only loses
// display names on the integrations status endpoint.
func loadRegistry(path string, log *zap.Logger) *registry.SinkRegistry {
	if path == "" {
		return registry.Empty()
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("sink registry not loaded", zap.String("path", path), zap.Error(err))
		return registry.Empty()
	}
	return reg
}
