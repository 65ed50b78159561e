package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/handlers"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/metrics"
	"github.com/jwaldner/strikescan/internal/report"
	"github.com/jwaldner/strikescan/internal/services"
)

func main() {
	cfg := config.Load()

	// Initialize proper logging with config level and file path
	if err := logger.InitWithOptions(cfg.Logging.LogLevel, cfg.Logging.LogFile, logger.Options{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()
	logger.Always.Printf("🚀 Strikescan server starting - Port: %s", cfg.Port)

	if cfg.Logging.LogLevel == "verbose" {
		fmt.Printf("⚠️  VERBOSE LOGGING ENABLED - every page fetch will be logged to %s\n", cfg.Logging.LogFile)
	}

	registry := prometheus.NewRegistry()
	m := metrics.New()
	if err := m.Register(registry); err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	opener, err := services.OpenerFromConfig(cfg, m)
	if err != nil {
		log.Fatalf("Invalid fetcher configuration: %v", err)
	}
	logger.Always.Printf("🔧 FETCH MODE: %s (render timeout %v, retries %d)", opener.Name(), cfg.RenderTimeout(), cfg.Scan.FetchRetries)

	sinks, err := report.SinksFromConfig(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("Failed to open report sinks: %v", err)
	}
	dispatcher := report.NewDispatcher(sinks...)

	scanService := services.NewScanService(cfg, opener, m, dispatcher)
	tickerService := services.NewTickerService(cfg)
	logger.Info.Printf("📋 Tickers: %s", tickerService.Source())

	snapshotHandler := handlers.NewSnapshotHandler(scanService, tickerService)

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/api/snapshot", snapshotHandler.CreateSnapshotHandler).Methods("POST")
	r.HandleFunc("/api/watchlist", snapshotHandler.WatchlistHandler).Methods("GET")
	r.HandleFunc("/healthz", handlers.HealthHandler).Methods("GET")
	r.Handle("/metrics", metrics.Handler(registry)).Methods("GET")

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("🌐 Server starting on http://localhost:%s\n", cfg.Port)
		logger.Always.Printf("🌐 Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start:", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Always.Printf("🛑 Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error.Printf("❌ Shutdown failed: %v", err)
	}
	if err := dispatcher.Close(); err != nil {
		logger.Error.Printf("❌ Closing sinks failed: %v", err)
	}
	logger.Info.Printf("%s", opener.Report())
}
