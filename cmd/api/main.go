package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"solana-swap-router/internal/assembler"
	"solana-swap-router/internal/cache"
	"solana-swap-router/internal/config"
	"solana-swap-router/internal/jupiter"
	"solana-swap-router/internal/raydium"
	"solana-swap-router/internal/router"
	"solana-swap-router/internal/rpc"
	"solana-swap-router/internal/server"
	"solana-swap-router/internal/sink"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main wires the venue clients, orchestrator, and HTTP server, then runs
// until SIGTERM with graceful shutdown.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:      cfg.RPCUrl,
		Timeout:      cfg.HTTPTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})

	jup := jupiter.NewClient(cfg.JupiterBaseURL, cfg.JupiterAPIKey)
	ray := raydium.NewClient(raydium.ClientConfig{
		BaseURL:  cfg.RaydiumBaseURL,
		Timeout:  cfg.HTTPTimeout,
		Accounts: rpcClient,
		Logger:   logger,
	})
	asm := assembler.New(rpcClient, logger)

	orch := router.New(jup, ray, asm, cfg, logger)

	// Optional quote cache; nil when REDIS_ADDR is unset.
	quotes, err := cache.NewQuoteCache(cfg.RedisAddr, cfg.QuoteCacheTTL, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to Redis")
	}
	if quotes != nil {
		defer quotes.Close()
	}

	// Optional swap record sink; nil when CLICKHOUSE_ADDR is unset.
	chSink, err := sink.NewClickHouseSink(sink.ClickHouseConfig{
		Addr:     cfg.ClickHouseAddr,
		Database: cfg.ClickHouseDatabase,
		Username: cfg.ClickHouseUsername,
		Password: cfg.ClickHousePassword,
	}, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to ClickHouse")
	}

	h := &server.Handlers{
		Router:  orch,
		Quotes:  quotes,
		DevMode: cfg.DevMode,
		Logger:  logger,
	}
	if chSink != nil {
		h.Sink = chSink
		defer chSink.Close()
	}

	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:    cfg.APIAddr,
			DevMode: cfg.DevMode,
			APIKey:  cfg.APIKey,
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	go func() {
		<-sigCh
		logger.Info("shutting down")
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil {
		// "http: Server closed" is expected during graceful shutdown
		if err.Error() == "http: Server closed" {
			return
		}
		logger.WithError(err).Fatal("api server failed")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		fmt.Println(err)
	}
}
