package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwaldner/strikescan/internal/config"
	"github.com/jwaldner/strikescan/internal/logger"
	"github.com/jwaldner/strikescan/internal/report"
	"github.com/jwaldner/strikescan/internal/services"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (default $CONFIG_FILE or config.yaml)")
	delay := flag.Duration("delay", -1, "pause between pipeline launches (default from config)")
	timeout := flag.Duration("timeout", 0, "per-page render timeout (default from config)")
	mode := flag.String("mode", "", "fetch mode: render or static (default from config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] [TICKER...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	var cfg *config.Config
	if *configPath != "" {
		cfg = config.LoadFile(*configPath)
	} else {
		cfg = config.Load()
	}
	if *timeout > 0 {
		cfg.Fetcher.RenderTimeoutSeconds = int((*timeout + time.Second - 1) / time.Second)
	}
	if *mode != "" {
		cfg.Fetcher.Mode = *mode
	}

	if err := logger.InitWithOptions(cfg.Logging.LogLevel, cfg.Logging.LogFile, logger.Options{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logger.Close()

	tickers, err := services.NewTickerService(cfg).Tickers(flag.Args())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	opener, err := services.OpenerFromConfig(cfg, nil)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	sinks, err := report.SinksFromConfig(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("❌ Failed to open report sinks: %v", err)
	}
	dispatcher := report.NewDispatcher(sinks...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Always.Printf("🚀 Scanning %d tickers (%s mode): %v", len(tickers), opener.Name(), tickers)
	runID, outcomes := services.NewScanService(cfg, opener, nil, dispatcher).Scan(ctx, tickers, *delay)

	if err := dispatcher.Close(); err != nil {
		logger.Error.Printf("❌ Closing sinks failed: %v", err)
	}
	logger.Info.Printf("%s", opener.Report())

	failed := 0
	for _, o := range outcomes {
		if !o.Succeeded() {
			failed++
		}
	}
	logger.Always.Printf("🏁 run %s finished: %d succeeded, %d failed", runID, len(outcomes)-failed, failed)
	if failed == len(outcomes) {
		stop()
		logger.Close()
		os.Exit(1)
	}
}
