//go:build e2e

package e2e

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestDashboard_HealthAndStatus(t *testing.T) {
	SkipIfMissingNode(t)
	base := StartDashboard(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	req := &HTTPRequest{Method: http.MethodGet, URL: base + "/v1/health"}
	body, status, err := req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var health struct {
		Status  string `json:"status"`
		Cluster struct {
			Reachable bool `json:"reachable"`
		} `json:"cluster"`
	}
	require.NoError(t, DecodeJSON(body, &health))
	require.Equal(t, "ok", health.Status)
	require.True(t, health.Cluster.Reachable)

	req = &HTTPRequest{Method: http.MethodGet, URL: base + "/v1/status"}
	body, status, err = req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var st struct {
		Reachable bool   `json:"reachable"`
		PinCount  int    `json:"pin_count"`
		APIURL    string `json:"api_url"`
	}
	require.NoError(t, DecodeJSON(body, &st))
	require.True(t, st.Reachable)
	require.GreaterOrEqual(t, st.PinCount, 0)
	require.Equal(t, GetNodeAPIURL(), st.APIURL)
}

func TestDashboard_UploadListFetchUnpin(t *testing.T) {
	SkipIfMissingNode(t)
	base := StartDashboard(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	content := []byte("clusterview dashboard e2e " + GenerateUniqueID("payload"))

	// Upload through the dashboard
	body, status, err := UploadFile(ctx, base, "e2e-note.txt", "text/plain", content)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status, "upload response: %s", string(body))

	var uploaded struct {
		CID  string `json:"cid"`
		Name string `json:"name"`
		Size int64  `json:"size"`
	}
	require.NoError(t, DecodeJSON(body, &uploaded))
	require.NotEmpty(t, uploaded.CID)
	require.Equal(t, "e2e-note.txt", uploaded.Name)
	require.Equal(t, int64(len(content)), uploaded.Size)
	t.Cleanup(func() { CleanupPin(t, uploaded.CID) })

	// The new pin must show up in the listing
	req := &HTTPRequest{Method: http.MethodGet, URL: base + "/v1/pins"}
	body, status, err = req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	var listing struct {
		Total int `json:"total"`
		Pins  []struct {
			CID string `json:"cid"`
		} `json:"pins"`
	}
	require.NoError(t, DecodeJSON(body, &listing))
	found := false
	for _, pin := range listing.Pins {
		if pin.CID == uploaded.CID {
			found = true
			break
		}
	}
	require.True(t, found, "expected listing to contain %s", uploaded.CID)

	// Fetch the object back through the dispatcher
	Delay(500)
	resp, err := http.Get(base + "/v1/objects/" + uploaded.CID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text", resp.Header.Get("X-Clusterview-Channel"))
	require.Contains(t, resp.Header.Get("Content-Disposition"), "inline")

	// Unpin through the dashboard
	req = &HTTPRequest{Method: http.MethodDelete, URL: base + "/v1/pins/" + uploaded.CID}
	body, status, err = req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status, "unpin response: %s", string(body))

	var removed struct {
		Removed []string `json:"removed"`
	}
	require.NoError(t, DecodeJSON(body, &removed))
	require.Contains(t, removed.Removed, uploaded.CID)
}

func TestDashboard_ObjectNotPinned(t *testing.T) {
	SkipIfMissingNode(t)
	base := StartDashboard(t)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// Any identifier absent from the pin set must be rejected before the
	// gateway is ever contacted
	req := &HTTPRequest{Method: http.MethodGet, URL: base + "/v1/objects/" + GenerateUniqueID("absent")}
	body, status, err := req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, status)

	var e struct {
		Code string `json:"code"`
	}
	require.NoError(t, DecodeJSON(body, &e))
	require.Equal(t, "NOT_PINNED", e.Code)
}

func TestDashboard_GC(t *testing.T) {
	SkipIfMissingNode(t)
	base := StartDashboard(t)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	req := &HTTPRequest{Method: http.MethodPost, URL: base + "/v1/gc", Timeout: 60 * time.Second}
	body, status, err := req.Do(ctx)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status, "gc response: %s", string(body))

	var gc struct {
		Count int `json:"count"`
	}
	require.NoError(t, DecodeJSON(body, &gc))
	require.GreaterOrEqual(t, gc.Count, 0)
}

func TestDashboard_StatusFeed(t *testing.T) {
	SkipIfMissingNode(t)
	base := StartDashboard(t)

	wsURL := "ws" + strings.TrimPrefix(base, "http") + "/v1/ws/status?interval=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	var frame struct {
		Type   string `json:"type"`
		Status struct {
			Reachable bool `json:"reachable"`
			PinCount  int  `json:"pin_count"`
		} `json:"status"`
	}
	require.NoError(t, conn.ReadJSON(&frame))
	require.Equal(t, "status", frame.Type)
	require.True(t, frame.Status.Reachable)
	require.GreaterOrEqual(t, frame.Status.PinCount, 0)
}
