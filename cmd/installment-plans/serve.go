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

	"github.com/iwvelando/installment-plans/internal/config"
	"github.com/iwvelando/installment-plans/internal/quote"
	"github.com/iwvelando/installment-plans/internal/server"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// loadServerConfig reads the server config and applies the -max-body flag.
func loadServerConfig(f *cliFlags) (*server.Config, error) {
	serverConf, err := server.LoadConfig(f.serverConfig)
	if err != nil {
		return nil, err
	}
	if f.maxBody != "" {
		size, err := server.ParseSize(f.maxBody)
		if err != nil {
			return nil, fmt.Errorf("invalid -max-body: %w", err)
		}
		if size <= 0 {
			return nil, fmt.Errorf("invalid -max-body: %q must be positive", f.maxBody)
		}
		serverConf.SetBodySizeBytes(size)
	}
	return serverConf, nil
}

// runServer serves the web UI until SIGINT or SIGTERM.
func runServer(f *cliFlags, conf *config.Configuration) int {
	serverConf, err := loadServerConfig(f)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", f.serverConfig, err)
		return 1
	}

	// Server logging settings win over the quote config when present.
	loggingConf := conf.Logging
	if serverConf.Logging != (config.LoggingConfig{}) {
		loggingConf = serverConf.Logging
	}
	logger, err := initializeLogger(loggingConf, f.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	logConfigFallback(logger, f, "main.runServer")

	warnings, err := conf.ValidateConfiguration()
	if err != nil {
		logger.Error("invalid configuration",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
		return 1
	}
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main.runServer"),
		)
	}

	service := quote.NewService(logger, serverConf.Limits.QuoteOptions(conf.Plans.Durations))

	srv := &http.Server{
		Addr: serverConf.Address,
		Handler: server.NewHandler(logger, server.Options{
			Service:     service,
			Defaults:    conf.Defaults,
			Export:      conf.Export,
			MaxBodySize: serverConf.BodySizeBytes(),
			Version:     version,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("op", "main.runServer"),
			zap.String("address", serverConf.Address),
			zap.Int64("maxBodyBytes", serverConf.BodySizeBytes()),
			zap.Int("maxDurationMonths", serverConf.Limits.MaxDurationMonths),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed",
				zap.String("op", "main.runServer"),
				zap.Error(err),
			)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed",
			zap.String("op", "main.runServer"),
			zap.Error(err),
		)
		return 1
	}
	logger.Info("server stopped", zap.String("op", "main.runServer"))
	return 0
}
