package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/clusterview/clusterview/pkg/httputil"
	"github.com/clusterview/clusterview/pkg/logging"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local operator tool; accept any origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// statusFeedHandler upgrades to WS and pushes cluster status frames until the
// client goes away. ?interval=N sets the refresh period in seconds.
func (d *Dashboard) statusFeedHandler(w http.ResponseWriter, r *http.Request) {
	interval := time.Duration(httputil.QueryParamInt(r, "interval", 5)) * time.Second
	if interval < time.Second {
		interval = time.Second
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		d.logger.ComponentWarn(logging.ComponentWS, "status feed: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	connID := uuid.New().String()
	d.logger.ComponentInfo(logging.ComponentWS, "status feed: client connected",
		zap.String("conn_id", connID),
		zap.String("interval", interval.String()))

	// Writer loop
	done := make(chan struct{})
	go d.statusWriterLoop(ctx, conn, connID, interval, done)

	// Reader loop: drain client frames so close and pong frames are processed
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	cancel()
	<-done

	d.logger.ComponentInfo(logging.ComponentWS, "status feed: client disconnected",
		zap.String("conn_id", connID))
}

// statusWriterLoop writes one frame immediately, then one per tick, with a
// ping keepalive for clients on long intervals
func (d *Dashboard) statusWriterLoop(ctx context.Context, conn *websocket.Conn, connID string, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	keepalive := time.NewTicker(30 * time.Second)
	defer keepalive.Stop()

	if err := d.writeStatusFrame(ctx, conn); err != nil {
		return
	}

	for {
		select {
		case <-ticker.C:
			if err := d.writeStatusFrame(ctx, conn); err != nil {
				d.logger.ComponentDebug(logging.ComponentWS, "status feed: write failed",
					zap.String("conn_id", connID),
					zap.Error(err))
				return
			}
		case <-keepalive.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage, []byte{}, time.Now().Add(5*time.Second))
			return
		}
	}
}

// writeStatusFrame snapshots the cluster and sends it as a JSON envelope
func (d *Dashboard) writeStatusFrame(ctx context.Context, conn *websocket.Conn) error {
	statusCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	st := d.snapshotStatus(statusCtx)
	cancel()

	frame, err := json.Marshal(map[string]any{
		"type":      "status",
		"timestamp": time.Now().UnixMilli(),
		"status":    st,
	})
	if err != nil {
		return err
	}

	conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, frame)
}
