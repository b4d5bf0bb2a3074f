//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clusterview/clusterview/pkg/config"
	"github.com/clusterview/clusterview/pkg/dashboard"
	"github.com/clusterview/clusterview/pkg/ipfs"
	"github.com/clusterview/clusterview/pkg/logging"
	"go.uber.org/zap"
)

var (
	nodeAPICache     string
	nodeGatewayCache string
	cacheMutex       sync.RWMutex
)

func getEnvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// GetNodeAPIURL returns the IPFS node API base URL the tests run against
func GetNodeAPIURL() string {
	cacheMutex.RLock()
	if nodeAPICache != "" {
		defer cacheMutex.RUnlock()
		return nodeAPICache
	}
	cacheMutex.RUnlock()

	url := getEnvDefault("CLUSTERVIEW_E2E_API_URL", "http://127.0.0.1:5001/api/v0")

	cacheMutex.Lock()
	nodeAPICache = url
	cacheMutex.Unlock()

	return url
}

// GetNodeGatewayURL returns the IPFS gateway base URL the tests run against
func GetNodeGatewayURL() string {
	cacheMutex.RLock()
	if nodeGatewayCache != "" {
		defer cacheMutex.RUnlock()
		return nodeGatewayCache
	}
	cacheMutex.RUnlock()

	url := getEnvDefault("CLUSTERVIEW_E2E_GATEWAY_URL", "http://127.0.0.1:8080/ipfs")

	cacheMutex.Lock()
	nodeGatewayCache = url
	cacheMutex.Unlock()

	return url
}

// NewTestLogger creates a test logger for debugging
func NewTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	logger, err := config.Build()
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	return logger
}

// NewNodeClient creates a node client configured for e2e tests
func NewNodeClient(t *testing.T) *ipfs.Client {
	t.Helper()

	client, err := ipfs.NewClient(ipfs.Config{
		APIURL:     GetNodeAPIURL(),
		GatewayURL: GetNodeGatewayURL(),
		Timeout:    30 * time.Second,
	}, NewTestLogger(t))
	if err != nil {
		t.Fatalf("failed to create node client: %v", err)
	}

	return client
}

// SkipIfMissingNode skips the test if no IPFS node is reachable
func SkipIfMissingNode(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewNodeClient(t)
	if err := client.Health(ctx); err != nil {
		t.Skipf("IPFS node not accessible at %s; test skipped", GetNodeAPIURL())
	}
}

// StartDashboard boots an in-process dashboard against the live node and
// returns its base URL. The server is torn down when the test finishes.
func StartDashboard(t *testing.T) string {
	t.Helper()

	logger := &logging.ColoredLogger{Logger: NewTestLogger(t)}

	cfg := config.DefaultConfig()
	cfg.Cluster.APIURL = GetNodeAPIURL()
	cfg.Cluster.GatewayURL = GetNodeGatewayURL()

	client := NewNodeClient(t)

	dash, err := dashboard.New(logger, cfg, client)
	if err != nil {
		t.Fatalf("failed to create dashboard: %v", err)
	}

	srv := httptest.NewServer(dash.Router())
	t.Cleanup(func() {
		srv.Close()
		dash.Close()
	})

	return srv.URL
}

// HTTPRequest is a helper for making dashboard HTTP requests
type HTTPRequest struct {
	Method  string
	URL     string
	Body    interface{}
	Headers map[string]string
	Timeout time.Duration
}

// Do executes an HTTP request and returns the response body and status
func (hr *HTTPRequest) Do(ctx context.Context) ([]byte, int, error) {
	if hr.Timeout == 0 {
		hr.Timeout = 30 * time.Second
	}

	var reqBody io.Reader
	if hr.Body != nil {
		data, err := json.Marshal(hr.Body)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, hr.Method, hr.URL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	if hr.Headers != nil {
		for k, v := range hr.Headers {
			req.Header.Set(k, v)
		}
	}

	if hr.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: hr.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// UploadFile posts a multipart upload to the dashboard and returns the
// response body and status
func UploadFile(ctx context.Context, dashboardURL, filename, contentType string, content []byte) ([]byte, int, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	if contentType != "" {
		hdr.Set("Content-Type", contentType)
	}

	fw, err := mw.CreatePart(hdr)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := fw.Write(content); err != nil {
		return nil, 0, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, 0, fmt.Errorf("failed to finalize form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, dashboardURL+"/v1/pins", &buf)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// DecodeJSON unmarshals response body into v
func DecodeJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// GenerateUniqueID generates a unique identifier for test resources
func GenerateUniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), rand.Intn(10000))
}

// Delay pauses execution for the specified duration
func Delay(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// WaitForCondition waits for a condition with exponential backoff
func WaitForCondition(maxWait time.Duration, check func() bool) error {
	deadline := time.Now().Add(maxWait)
	backoff := 100 * time.Millisecond

	for {
		if check() {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("condition not met within %v", maxWait)
		}
		time.Sleep(backoff)
		if backoff < 2*time.Second {
			backoff = backoff * 2
		}
	}
}

// CleanupPin unpins a CID after tests
func CleanupPin(t *testing.T, cid string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client := NewNodeClient(t)
	if _, err := client.Unpin(ctx, cid); err != nil {
		t.Logf("warning: failed to unpin %s: %v", cid, err)
	}
}
