// cmd/concierge-worker/main.go
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

	"dining-concierge/internal/catalog"
	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/observability"
	"dining-concierge/internal/fulfillment"
	"dining-concierge/internal/mailer"
	"dining-concierge/internal/queue"
	"dining-concierge/internal/search"
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
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting concierge worker...")

	obs := observability.New("concierge-worker")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
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

	// --- Init Elasticsearch with retry ---
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

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SES mailer ---
	sesMailer, err := mailer.NewSES(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
	if err != nil {
		zapLog.Fatal("ses client failed", zap.Error(err))
	}
	zapLog.Info("SES client initialized")

	workQueue := queue.New(rdb.Client, cfg.Queue.Name, log,
		queue.WithWait(time.Duration(cfg.Queue.WaitTime)*time.Millisecond),
		queue.WithVisibility(time.Duration(cfg.Queue.VisibilityTimeout)*time.Millisecond),
	)
	index := search.NewIndex(esClient.Client, cfg.Search.Index, log)
	store := catalog.NewStore(pg.DB, log)

	worker, err := fulfillment.NewWorker(workQueue, index, store, sesMailer,
		fulfillment.Config{
			MaxCandidates: cfg.Search.MaxCandidates,
			SampleSize:    cfg.Fulfillment.SampleSize,
		}, log)
	if err != nil {
		zapLog.Fatal("worker init failed", zap.Error(err))
	}

	// --- Health/Metrics server ---
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
		zapLog.Info("Health/Metrics server listening", zap.String("addr", cfg.App.MetricsAddr))
		if err := http.ListenAndServe(cfg.App.MetricsAddr, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Poll loop ---
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	pollInterval := time.Duration(cfg.Fulfillment.PollInterval) * time.Millisecond
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-runCtx.Done():
				return
			default:
			}

			start := time.Now()
			outcome, err := worker.ProcessOne(runCtx)
			obs.RecordIteration(runCtx, string(outcome))
			obs.RecordDuration(runCtx, time.Since(start), string(outcome))

			if err != nil {
				if runCtx.Err() != nil {
					return
				}
				zapLog.Error("iteration failed", zap.Error(err))
				time.Sleep(pollInterval)
				continue
			}
			if outcome == fulfillment.OutcomeNoWork {
				time.Sleep(pollInterval)
			}
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping worker...")
	cancel()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		zapLog.Warn("worker did not stop within deadline")
	}

	zapLog.Info("Concierge worker stopped gracefully")
}
