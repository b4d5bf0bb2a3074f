package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/clusterview/clusterview/pkg/config"
	"github.com/clusterview/clusterview/pkg/dashboard"
	"github.com/clusterview/clusterview/pkg/ipfs"
	"github.com/clusterview/clusterview/pkg/logging"
	"go.uber.org/zap"
)

func setupLogger() *logging.ColoredLogger {
	logger, err := logging.NewColoredLogger(logging.ComponentGeneral, true)
	if err != nil {
		panic(err)
	}
	return logger
}

// buildLogger rebuilds the logger from the effective logging config. The
// bootstrap logger only exists so config parsing has somewhere to report to.
func buildLogger(bootstrap *logging.ColoredLogger, cfg *config.Config) *logging.ColoredLogger {
	if cfg.Logging.OutputFile != "" {
		logger, err := logging.NewFileLogger(logging.ComponentGeneral, cfg.Logging.OutputFile, false)
		if err == nil {
			return logger
		}
		bootstrap.ComponentWarn(logging.ComponentGeneral, "Failed to open log file, logging to stdout",
			zap.String("path", cfg.Logging.OutputFile),
			zap.Error(err),
		)
	}

	logger, err := logging.NewColoredLoggerWithLevel(logging.ComponentGeneral, cfg.Logging.Colors, logging.ParseLevel(cfg.Logging.Level))
	if err != nil {
		bootstrap.ComponentWarn(logging.ComponentGeneral, "Failed to build logger, keeping bootstrap logger", zap.Error(err))
		return bootstrap
	}
	return logger
}

func main() {
	logger := setupLogger()

	// Load dashboard config (flags/env/file)
	cfg := parseConfig(logger)
	logger = buildLogger(logger, cfg)

	client, err := ipfs.NewClient(ipfs.Config{
		APIURL:     cfg.Cluster.APIURL,
		GatewayURL: cfg.Cluster.GatewayURL,
		Timeout:    cfg.Cluster.Timeout,
	}, logger.Logger)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to create cluster client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize dashboard (routes, dispatcher, cluster probe)
	dash, err := dashboard.New(logger, cfg, client)
	if err != nil {
		logger.ComponentError(logging.ComponentGeneral, "failed to initialize dashboard", zap.Error(err))
		os.Exit(1)
	}
	defer dash.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Run the server in a goroutine so signals can interrupt it
	errChan := make(chan error, 1)
	doneChan := make(chan struct{})
	go func() {
		if err := dash.Start(ctx); err != nil {
			errChan <- err
		}
		close(doneChan)
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		logger.ComponentError(logging.ComponentGeneral, "Dashboard server failed", zap.Error(err))
		os.Exit(1)
	case <-quit:
		logger.ComponentInfo(logging.ComponentGeneral, "Shutting down dashboard...")
		cancel()
		<-doneChan
		logger.ComponentInfo(logging.ComponentGeneral, "Dashboard shutdown complete")
	}
}
