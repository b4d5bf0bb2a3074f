package config

import (
	"fmt"
	"os"
	"time"
)

// Config represents the main configuration for a ClusterView dashboard instance
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Cluster ClusterConfig `yaml:"cluster"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains the dashboard HTTP server configuration
type ServerConfig struct {
	ListenAddr     string        `yaml:"listen_addr"`     // Address to listen on (e.g., ":8090")
	RequestTimeout time.Duration `yaml:"request_timeout"` // Per-request timeout
}

// ClusterConfig contains the IPFS node endpoints the dashboard talks to
type ClusterConfig struct {
	// APIURL is the IPFS HTTP API base URL used for pin listing, uploads,
	// unpinning and garbage collection (e.g., "http://127.0.0.1:5001/api/v0")
	APIURL string `yaml:"api_url"`

	// GatewayURL is the IPFS gateway base URL used for content retrieval
	// (e.g., "http://127.0.0.1:8080/ipfs")
	GatewayURL string `yaml:"gateway_url"`

	// Timeout for cluster API and gateway operations
	// If zero, defaults to 30 seconds
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level"`       // debug, info, warn, error
	Colors     bool   `yaml:"colors"`      // Enable ANSI colored output
	OutputFile string `yaml:"output_file"` // Empty for stdout
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			ListenAddr:     ":8090",
			RequestTimeout: 30 * time.Second,
		},
		Cluster: ClusterConfig{
			APIURL:     "http://127.0.0.1:5001/api/v0",
			GatewayURL: "http://127.0.0.1:8080/ipfs",
			Timeout:    30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Colors: true,
		},
	}
}

// Load reads a config from a YAML file. Unknown keys are rejected so typos
// in operator configs surface at startup instead of being silently ignored.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := DecodeStrict(f, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
