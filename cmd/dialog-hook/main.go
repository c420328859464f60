// cmd/dialog-hook/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dining-concierge/internal/common/config"
	"dining-concierge/internal/common/database"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/dialog"
	"dining-concierge/internal/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting dialog hook...")

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		zapLog.Fatal("redis connection failed", zap.Error(err))
	}
	defer rdb.Close()

	if err := rdb.Ping(context.Background()); err != nil {
		zapLog.Fatal("redis ping failed", zap.Error(err))
	}
	zapLog.Info("Redis connected successfully")

	workQueue := queue.New(rdb.Client, cfg.Queue.Name, log,
		queue.WithVisibility(time.Duration(cfg.Queue.VisibilityTimeout)*time.Millisecond),
	)
	engine := dialog.NewEngine(workQueue, log)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/dialog", handleTurn(engine, zapLog))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	server := &http.Server{
		Addr:         cfg.App.HookAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		zapLog.Info("Dialog hook listening", zap.String("addr", cfg.App.HookAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Dialog hook stopped gracefully")
}

func handleTurn(engine *dialog.Engine, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req dialog.HookRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		turn := dialog.TurnFromRequest(req)
		action, err := engine.Advance(r.Context(), turn)
		if err != nil {
			if errors.Is(err, dialog.ErrMalformedDate) {
				http.Error(w, "date must be formatted YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			log.Error("dialog turn failed", zap.Error(err), zap.String("intent", string(turn.Intent)))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(dialog.ResponseFromAction(turn.Intent, action))
	}
}
