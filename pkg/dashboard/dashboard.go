// Package dashboard is the operator-facing HTTP surface of clusterview. It
// serves the single-page UI, a JSON API over the cluster node's control plane
// (pin listing, upload, unpin, garbage collection), the object fetch endpoint
// backed by the dispatch package, and a websocket status feed.
package dashboard

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/clusterview/clusterview/pkg/config"
	"github.com/clusterview/clusterview/pkg/dispatch"
	"github.com/clusterview/clusterview/pkg/ipfs"
	"github.com/clusterview/clusterview/pkg/logging"
)

// Version is reported by /v1/version and the startup banner.
const Version = "0.1.0"

// Dashboard routes operator requests to a cluster node
type Dashboard struct {
	logger     *logging.ColoredLogger
	cfg        *config.Config
	cluster    ipfs.NodeClient
	dispatcher *dispatch.Dispatcher
	router     chi.Router
	server     *http.Server
	startedAt  time.Time
}

// New creates and initializes a new Dashboard instance. The cluster node is
// probed in the background; a node that is down at startup only shows up as
// unreachable in /v1/status, it does not prevent the dashboard from serving.
func New(logger *logging.ColoredLogger, cfg *config.Config, cluster ipfs.NodeClient) (*Dashboard, error) {
	if logger == nil {
		var err error
		logger, err = logging.NewColoredLogger(logging.ComponentDashboard, true)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if cluster == nil {
		return nil, fmt.Errorf("cluster client is required")
	}

	d := &Dashboard{
		logger:    logger,
		cfg:       cfg,
		cluster:   cluster,
		router:    chi.NewRouter(),
		startedAt: time.Now(),
	}

	d.dispatcher = dispatch.NewDispatcher(cluster, cluster, dispatch.Config{
		DirectoryEndpoint: cfg.Cluster.APIURL,
		GatewayEndpoint:   cfg.Cluster.GatewayURL,
	}, logger.Logger)

	// Set up router middleware
	d.router.Use(middleware.RequestID)
	d.router.Use(d.loggingMiddleware)
	d.router.Use(middleware.Recoverer)
	d.router.Use(d.corsMiddleware)

	d.setupRoutes()

	go d.probeCluster(5 * time.Second)

	logger.ComponentInfo(logging.ComponentDashboard, "Dashboard initialized",
		zap.String("listen_addr", cfg.Server.ListenAddr),
		zap.String("api_url", cfg.Cluster.APIURL),
		zap.String("gateway_url", cfg.Cluster.GatewayURL),
	)

	return d, nil
}

// probeCluster checks node reachability once at startup and logs the outcome
func (d *Dashboard) probeCluster(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := d.cluster.Health(ctx); err != nil {
		d.logger.ComponentWarn(logging.ComponentCluster, "cluster not reachable at startup",
			zap.String("api_url", d.cfg.Cluster.APIURL),
			zap.Error(err))
		return
	}
	d.logger.ComponentInfo(logging.ComponentCluster, "cluster reachable",
		zap.String("api_url", d.cfg.Cluster.APIURL))
}

// Start starts the dashboard HTTP server and blocks until ctx is cancelled
func (d *Dashboard) Start(ctx context.Context) error {
	d.server = &http.Server{
		Addr:    d.cfg.Server.ListenAddr,
		Handler: d.router,
	}

	// Listen for connections
	listener, err := net.Listen("tcp", d.cfg.Server.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.cfg.Server.ListenAddr, err)
	}

	d.logger.ComponentInfo(logging.ComponentDashboard, "Dashboard server starting",
		zap.String("listen_addr", d.cfg.Server.ListenAddr),
		zap.String("version", Version),
	)

	// Serve in a goroutine
	go func() {
		if err := d.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			d.logger.ComponentError(logging.ComponentDashboard, "Dashboard server error", zap.Error(err))
		}
	}()

	// Wait for context cancellation
	<-ctx.Done()
	return d.Stop()
}

// Stop gracefully stops the dashboard HTTP server
func (d *Dashboard) Stop() error {
	if d == nil || d.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d.logger.ComponentInfo(logging.ComponentDashboard, "Dashboard shutting down")

	if err := d.server.Shutdown(ctx); err != nil {
		d.logger.ComponentError(logging.ComponentDashboard, "Dashboard shutdown error", zap.Error(err))
		return err
	}

	d.logger.ComponentInfo(logging.ComponentDashboard, "Dashboard shutdown complete")
	return nil
}

// Router returns the chi router for testing or extension
func (d *Dashboard) Router() chi.Router {
	return d.router
}

// Close releases the cluster client
func (d *Dashboard) Close() {
	if d.cluster != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.cluster.Close(ctx); err != nil {
			d.logger.ComponentWarn(logging.ComponentCluster, "error during cluster client close", zap.Error(err))
		}
	}
}
