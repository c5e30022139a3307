// cmd/loanflow/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"loanflow/internal/application"
	"loanflow/internal/common/aws"
	"loanflow/internal/common/config"
	"loanflow/internal/common/database"
	"loanflow/internal/common/logger"
	"loanflow/internal/common/observability"
	"loanflow/internal/flow"
	"loanflow/internal/notification"
	"loanflow/internal/search"
	"loanflow/internal/storage"
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
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting loanflow...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)

	ctx := context.Background()

	if cfg.Tracing.Enabled {
		shutdownTracer, err := observability.InitTracer(cfg.App.Name, cfg.Tracing.Endpoint)
		if err != nil {
			zapLog.Fatal("tracer init failed", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(shutdownCtx); err != nil {
				zapLog.Error("tracer shutdown failed", zap.Error(err))
			}
		}()
		zapLog.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	// --- Init Storage Backend ---
	var store storage.Store

	switch cfg.Storage.Driver {
	case "redis":
		var redisClient *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		zapLog.Info("Redis connected successfully")

		store = storage.NewRedisStore(redisClient.Client, cfg.Storage.Namespace, log)

	case "postgres":
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()
		zapLog.Info("PostgreSQL connected successfully")

		if err := storage.EnsureSchema(ctx, pg.DB); err != nil {
			zapLog.Fatal("postgres schema setup failed", zap.Error(err))
		}

		store = storage.NewPostgresStore(pg.DB, cfg.Storage.Namespace, log)

	case "memory":
		store = storage.NewMemoryStore(log)
		zapLog.Info("Using in-memory storage")

	default:
		zapLog.Fatal("unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}

	// --- Init Flow Controller ---
	apps := application.NewService(store, log)

	exit := make(chan struct{}, 1)
	navigateHome := func() {
		select {
		case exit <- struct{}{}:
		default:
		}
	}

	controller := flow.NewController(store, apps, cfg.Loan, navigateHome, log).
		WithObservability(obs)

	// --- Init Notification Channels ---
	if cfg.Notifications.SMSEnabled || cfg.Notifications.EmailEnabled {
		var sms notification.SMSSender
		var email notification.EmailSender

		if cfg.Notifications.SMSEnabled {
			snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Fatal("sns client failed", zap.Error(err))
			}
			sms = snsClient
		}
		if cfg.Notifications.EmailEnabled {
			sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Fatal("ses client failed", zap.Error(err))
			}
			email = sesClient
		}

		controller.WithNotifier(notification.NewNotifier(sms, email, cfg.Notifications.FromAddress, log))
		zapLog.Info("Notification channels initialized",
			zap.Bool("sms", cfg.Notifications.SMSEnabled),
			zap.Bool("email", cfg.Notifications.EmailEnabled),
		)
	}

	// --- Init Search Indexer ---
	if cfg.Search.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")

		controller.WithIndexer(search.NewIndexer(esClient.Client, cfg.Search.Index, log))
	}

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, nil); err != nil {
				zapLog.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Run the Wizard ---
	wizard := newWizard(controller, cfg.Loan, os.Stdin, os.Stdout)

	done := make(chan struct{})
	go func() {
		defer close(done)
		wizard.run(ctx)
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		zapLog.Info("Shutdown signal received")
	case <-exit:
		zapLog.Info("Wizard exited")
	case <-done:
		zapLog.Info("Input closed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("loanflow stopped gracefully")
}
