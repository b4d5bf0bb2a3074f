package dashboard

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/clusterview/clusterview/pkg/httputil"
	"github.com/clusterview/clusterview/pkg/logging"
)

// serverHealth is the JSON structure used by healthHandler
type serverHealth struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Uptime    string    `json:"uptime"`
}

// clusterStatus is one observation of the cluster as seen from the dashboard.
// It feeds both /v1/status and the websocket status frames.
type clusterStatus struct {
	Timestamp  time.Time `json:"timestamp"`
	Reachable  bool      `json:"reachable"`
	PinCount   int       `json:"pin_count"`
	Uptime     string    `json:"uptime"`
	APIURL     string    `json:"api_url"`
	GatewayURL string    `json:"gateway_url"`
	Error      string    `json:"error,omitempty"`
}

// snapshotStatus lists pins to observe reachability and pin count in one call
func (d *Dashboard) snapshotStatus(ctx context.Context) clusterStatus {
	st := clusterStatus{
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(d.startedAt).String(),
		APIURL:     d.cfg.Cluster.APIURL,
		GatewayURL: d.cfg.Cluster.GatewayURL,
	}

	pins, err := d.cluster.Pins(ctx)
	if err != nil {
		st.Error = err.Error()
		return st
	}

	st.Reachable = true
	st.PinCount = len(pins)
	return st
}

// livenessHandler answers as long as the process is serving
func (d *Dashboard) livenessHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w)
}

// healthHandler reports server uptime plus the cluster probe result
func (d *Dashboard) healthHandler(w http.ResponseWriter, r *http.Request) {
	server := serverHealth{
		Status:    "ok",
		StartedAt: d.startedAt,
		Uptime:    time.Since(d.startedAt).String(),
	}

	status := "ok"
	cluster := map[string]any{"reachable": true}
	if err := d.cluster.Health(r.Context()); err != nil {
		d.logger.ComponentWarn(logging.ComponentCluster, "cluster health probe failed", zap.Error(err))
		status = "degraded"
		cluster["reachable"] = false
		cluster["error"] = err.Error()
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"server":  server,
		"cluster": cluster,
	})
}

// statusHandler aggregates cluster reachability, pin count and endpoints for
// the UI banner
func (d *Dashboard) statusHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, d.snapshotStatus(r.Context()))
}

func (d *Dashboard) versionHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"name":    "clusterview",
		"version": Version,
	})
}
