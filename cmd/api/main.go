package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dan9191/cashflow-service/internal/app"
	"github.com/Dan9191/cashflow-service/internal/config"
	"github.com/Dan9191/cashflow-service/internal/handler"
	"github.com/Dan9191/cashflow-service/internal/middleware"
	"github.com/Dan9191/cashflow-service/internal/scheduler"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize logger
	logger := app.NewLogger(os.Getenv("LOG_LEVEL"))

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize layers
	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize: %v", err)
	}
	defer a.Close()
	h := handler.NewHandler(a.Service)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	h.Routes(r, middleware.AuthMiddleware(cfg))

	// Background jobs
	sched := scheduler.New(a.Service, a.Notifier(), a.Location, logger)
	if err := sched.Register(); err != nil {
		logger.Fatalf("Failed to schedule jobs: %v", err)
	}
	sched.Start()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("Scheduled jobs still running at exit")
	}
}
