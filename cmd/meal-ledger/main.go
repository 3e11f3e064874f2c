// cmd/meal-ledger/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"meal-ledger/internal/config"
	"meal-ledger/internal/extract"
	"meal-ledger/internal/ledger"
	"meal-ledger/internal/logger"
	"meal-ledger/internal/proxy"
	"meal-ledger/internal/server"
)

var (
	port    = flag.Int("port", 8012, "Port for HTTP transport")
	host    = flag.String("host", "0.0.0.0", "Host address")
	dbPath  = flag.String("db-path", "meal-ledger.db", "Journal database path (empty disables persistence)")
	version = flag.Bool("version", false, "Show version")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Println("meal-ledger version 1.0.0")
		os.Exit(0)
	}

	logger.Init()
	defer logger.Sync()

	cfg := config.Load()

	led := ledger.New()

	var journal *ledger.Journal
	if *dbPath != "" {
		var err error
		journal, err = ledger.OpenJournal(*dbPath)
		if err != nil {
			logger.Fatal("failed to open journal", zap.Error(err))
		}
		if err := journal.Replay(led.Append); err != nil {
			logger.Fatal("failed to replay journal", zap.Error(err))
		}
	}

	llmProxy := proxy.New(cfg.UpstreamURL, cfg.APIKey, cfg.Model)

	// The extraction client talks to our own proxy endpoint, the same one
	// the single-page app uses, so the credential stays in one place.
	proxyHost := *host
	if proxyHost == "0.0.0.0" {
		proxyHost = "127.0.0.1"
	}
	extractor := extract.NewClient(fmt.Sprintf("http://%s:%d/api/llm", proxyHost, *port))

	srv := server.New(&server.Config{
		Host:           *host,
		Port:           *port,
		AllowedOrigins: cfg.AllowedOrigins,
	}, led, journal, extractor, llmProxy)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting meal ledger server",
			zap.String("host", *host), zap.Int("port", *port))
		if err := srv.Start(ctx); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-sigCh:
		logger.Info("received shutdown signal")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down")
	cancel()
	if err := srv.Stop(); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}
