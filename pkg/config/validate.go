package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ValidationError represents a single validation error with context.
type ValidationError struct {
	Path    string // e.g., "cluster.api_url"
	Message string // e.g., "invalid URL"
	Hint    string // e.g., "expected http://host:port/api/v0"
}

func (e ValidationError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s; %s", e.Path, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateServer()...)
	errs = append(errs, c.validateCluster()...)
	errs = append(errs, c.validateLogging()...)

	return errs
}

func (c *Config) validateServer() []error {
	var errs []error
	sc := c.Server

	if sc.ListenAddr == "" {
		errs = append(errs, ValidationError{
			Path:    "server.listen_addr",
			Message: "must not be empty",
			Hint:    "expected format: [host]:port (e.g., \":8090\")",
		})
	} else {
		if err := validateListenAddr(sc.ListenAddr); err != nil {
			errs = append(errs, ValidationError{
				Path:    "server.listen_addr",
				Message: err.Error(),
				Hint:    "expected format: [host]:port (e.g., \":8090\")",
			})
		}
	}

	if sc.RequestTimeout != 0 && sc.RequestTimeout < time.Second {
		errs = append(errs, ValidationError{
			Path:    "server.request_timeout",
			Message: fmt.Sprintf("must be >= 1s or 0 (for default); got %v", sc.RequestTimeout),
			Hint:    "recommended: 30s",
		})
	}

	return errs
}

func (c *Config) validateCluster() []error {
	var errs []error
	cc := c.Cluster

	if err := validateHTTPURL(cc.APIURL); err != nil {
		errs = append(errs, ValidationError{
			Path:    "cluster.api_url",
			Message: err.Error(),
			Hint:    "expected format: http://host:port/api/v0",
		})
	}

	if err := validateHTTPURL(cc.GatewayURL); err != nil {
		errs = append(errs, ValidationError{
			Path:    "cluster.gateway_url",
			Message: err.Error(),
			Hint:    "expected format: http://host:port/ipfs",
		})
	}

	if cc.Timeout != 0 && cc.Timeout < time.Second {
		errs = append(errs, ValidationError{
			Path:    "cluster.timeout",
			Message: fmt.Sprintf("must be >= 1s or 0 (for default); got %v", cc.Timeout),
			Hint:    "recommended: 30s",
		})
	}

	return errs
}

func (c *Config) validateLogging() []error {
	var errs []error
	log := c.Logging

	// Validate level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[log.Level] {
		errs = append(errs, ValidationError{
			Path:    "logging.level",
			Message: fmt.Sprintf("invalid value %q", log.Level),
			Hint:    "allowed values: debug, info, warn, error",
		})
	}

	// Validate output_file
	if log.OutputFile != "" {
		dir := filepath.Dir(log.OutputFile)
		if dir != "" && dir != "." {
			if err := validateDirWritable(dir); err != nil {
				errs = append(errs, ValidationError{
					Path:    "logging.output_file",
					Message: fmt.Sprintf("parent directory not writable: %v", err),
				})
			}
		}
	}

	return errs
}

// Helper validation functions

func validateListenAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid listen address: %v", err)
	}
	_ = host // empty host means all interfaces

	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return fmt.Errorf("port must be a number between 1 and 65535; got %q", port)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("must not be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https; got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host must not be empty")
	}

	return nil
}

func validateDirWritable(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot access directory: %v", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path is not a directory")
	}

	// Try to write a test file
	testFile := filepath.Join(path, ".write_test")
	if err := os.WriteFile(testFile, []byte(""), 0644); err != nil {
		return fmt.Errorf("directory not writable: %v", err)
	}
	os.Remove(testFile)

	return nil
}
