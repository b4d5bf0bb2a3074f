package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/clusterview/clusterview/pkg/config"
	"github.com/clusterview/clusterview/pkg/dashboard"
	"github.com/clusterview/clusterview/pkg/logging"
	"go.uber.org/zap"
)

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

// parseConfig parses flags and environment variables into the dashboard config.
// Priority: flags > env > config file > defaults. Flags default to the empty
// string so that only values the operator actually set override the file.
func parseConfig(logger *logging.ColoredLogger) *config.Config {
	cfgPath := flag.String("config", getEnvDefault("CLUSTERVIEW_CONFIG", ""), "Path to a YAML config file (absolute, or relative to ~/.clusterview)")
	addr := flag.String("addr", getEnvDefault("CLUSTERVIEW_ADDR", ""), "HTTP listen address (e.g., :8090)")
	apiURL := flag.String("api-url", getEnvDefault("CLUSTERVIEW_API_URL", ""), "IPFS node API base URL (e.g., http://127.0.0.1:5001/api/v0)")
	gatewayURL := flag.String("gateway-url", getEnvDefault("CLUSTERVIEW_GATEWAY_URL", ""), "IPFS gateway base URL (e.g., http://127.0.0.1:8080/ipfs)")
	logLevel := flag.String("log-level", getEnvDefault("CLUSTERVIEW_LOG_LEVEL", ""), "Log level: debug, info, warn or error")
	logFile := flag.String("log-file", getEnvDefault("CLUSTERVIEW_LOG_FILE", ""), "Write logs to this file instead of stdout")
	noColor := flag.Bool("no-color", getEnvBoolDefault("CLUSTERVIEW_NO_COLOR", false), "Disable colored log output")
	printConfig := flag.Bool("print-config", false, "Print the effective configuration as YAML and exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	// Do not call flag.Parse() elsewhere to avoid double-parsing
	flag.Parse()

	if *showVersion {
		fmt.Printf("clusterview %s\n", dashboard.Version)
		os.Exit(0)
	}

	cfg := config.DefaultConfig()
	if strings.TrimSpace(*cfgPath) != "" {
		path, err := config.DefaultPath(strings.TrimSpace(*cfgPath))
		if err != nil {
			logger.ComponentError(logging.ComponentGeneral, "Failed to resolve config path", zap.Error(err))
			os.Exit(1)
		}
		loaded, err := config.Load(path)
		if err != nil {
			logger.ComponentError(logging.ComponentGeneral, "Failed to load config file",
				zap.String("path", path),
				zap.Error(err),
			)
			os.Exit(1)
		}
		cfg = loaded
	}

	if v := strings.TrimSpace(*addr); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := strings.TrimSpace(*apiURL); v != "" {
		cfg.Cluster.APIURL = v
	}
	if v := strings.TrimSpace(*gatewayURL); v != "" {
		cfg.Cluster.GatewayURL = v
	}
	if v := strings.TrimSpace(*logLevel); v != "" {
		cfg.Logging.Level = v
	}
	if v := strings.TrimSpace(*logFile); v != "" {
		cfg.Logging.OutputFile = v
	}
	if *noColor {
		cfg.Logging.Colors = false
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		for _, err := range errs {
			logger.ComponentError(logging.ComponentGeneral, "Invalid configuration", zap.Error(err))
		}
		os.Exit(1)
	}

	if *printConfig {
		if err := config.Encode(os.Stdout, cfg); err != nil {
			logger.ComponentError(logging.ComponentGeneral, "Failed to encode configuration", zap.Error(err))
			os.Exit(1)
		}
		os.Exit(0)
	}

	logger.ComponentInfo(logging.ComponentGeneral, "Loaded dashboard configuration",
		zap.String("addr", cfg.Server.ListenAddr),
		zap.String("api_url", cfg.Cluster.APIURL),
		zap.String("gateway_url", cfg.Cluster.GatewayURL),
		zap.String("log_level", cfg.Logging.Level),
	)

	return cfg
}
