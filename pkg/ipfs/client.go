package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NodeClient defines the interface for IPFS node operations
type NodeClient interface {
	Pins(ctx context.Context) (PinSet, error)
	Add(ctx context.Context, reader io.Reader, name string, contentType string) (*AddResponse, error)
	Unpin(ctx context.Context, cid string) ([]string, error)
	GC(ctx context.Context) (*GCResult, error)
	Fetch(ctx context.Context, cid string) (*ObjectData, error)
	Health(ctx context.Context) error
	Close(ctx context.Context) error
}

// Client wraps the IPFS node HTTP API and gateway for dashboard operations
type Client struct {
	apiURL     string
	gatewayURL string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the IPFS client
type Config struct {
	// APIURL is the base URL for the node HTTP API (e.g., "http://127.0.0.1:5001/api/v0")
	// If empty, defaults to "http://127.0.0.1:5001/api/v0"
	APIURL string

	// GatewayURL is the base URL for the content gateway (e.g., "http://127.0.0.1:8080/ipfs")
	// If empty, defaults to "http://127.0.0.1:8080/ipfs"
	GatewayURL string

	// Timeout is the timeout for client operations
	// If zero, defaults to 30 seconds
	Timeout time.Duration
}

// PinInfo is the per-CID metadata returned by a pin listing
type PinInfo struct {
	Type string `json:"Type"` // "recursive", "direct", "indirect"
}

// PinSet maps pinned CIDs to their metadata. It is a snapshot: the node may
// pin or unpin concurrently, so membership answers are only as fresh as the
// listing they came from.
type PinSet map[string]PinInfo

// Contains reports whether cid is a member of the snapshot.
func (s PinSet) Contains(cid string) bool {
	_, ok := s[cid]
	return ok
}

// AddResponse represents the response from adding content to the node
type AddResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"` // DAG size as reported by the node

	// Bytes is the original payload size counted by this client, not the
	// DAG size the node reports in Size.
	Bytes int64 `json:"-"`
}

// GCResult represents the outcome of a garbage collection run
type GCResult struct {
	Removed []string `json:"removed"`
	Errors  []string `json:"errors,omitempty"`
}

// ObjectData is a retrieved object: raw bytes plus the headers the gateway
// declared for them. Lives for a single request/response cycle.
type ObjectData struct {
	Body        []byte
	ContentType string // raw Content-Type header value, may be empty
	Disposition string // raw Content-Disposition header value, may be empty
}

// StatusError is returned when the node or gateway answers with a
// non-success status. Body carries the response text for error reporting.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

// NewClient creates a new IPFS node client wrapper
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	apiURL := cfg.APIURL
	if apiURL == "" {
		apiURL = "http://127.0.0.1:5001/api/v0"
	}

	gatewayURL := cfg.GatewayURL
	if gatewayURL == "" {
		gatewayURL = "http://127.0.0.1:8080/ipfs"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	httpClient := &http.Client{
		Timeout: timeout,
	}

	return &Client{
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		gatewayURL: strings.TrimSuffix(gatewayURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// APIURL returns the node API base URL the client was configured with.
func (c *Client) APIURL() string {
	return c.apiURL
}

// GatewayURL returns the gateway base URL the client was configured with.
func (c *Client) GatewayURL() string {
	return c.gatewayURL
}

// Health checks if the node API is reachable by listing pins
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/pin/ls", nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// Pins retrieves the full current pin set from the node
func (c *Client) Pins(ctx context.Context) (PinSet, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/pin/ls", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create pin listing request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pin listing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: "pin/ls", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result struct {
		Keys PinSet `json:"Keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode pin listing response: %w", err)
	}

	if result.Keys == nil {
		result.Keys = PinSet{}
	}

	return result.Keys, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Add uploads content to the node and returns the CID. The uploaded file's
// declared content type is forwarded so the gateway can reproduce it later.
func (c *Client) Add(ctx context.Context, reader io.Reader, name string, contentType string) (*AddResponse, error) {
	// Track original size by reading into memory first
	// This allows us to return the actual byte count, not the DAG size
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	originalSize := int64(len(data))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(name)))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}

	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to copy data: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL+"/add", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create add request: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("add request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: "add", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	// The node streams NDJSON progress objects. Drain the entire stream and
	// keep the last object, which describes the completed add.
	dec := json.NewDecoder(resp.Body)
	var last AddResponse
	var hasResult bool

	for {
		var chunk AddResponse
		if err := dec.Decode(&chunk); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode add response: %w", err)
		}
		last = chunk
		hasResult = true
	}

	if !hasResult || last.Hash == "" {
		return nil, fmt.Errorf("add response missing CID")
	}

	// Ensure name is set if provided
	if last.Name == "" && name != "" {
		last.Name = name
	}

	last.Bytes = originalSize

	c.logger.Debug("Added content to node",
		zap.String("cid", last.Hash),
		zap.String("name", last.Name),
		zap.Int64("bytes", originalSize))

	return &last, nil
}

// Unpin removes a pin from a CID. Returns the CIDs the node reports as
// unpinned, falling back to the requested CID when the body is empty.
func (c *Client) Unpin(ctx context.Context, cid string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/pin/rm/"+cid, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create unpin request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unpin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: "pin/rm", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var result struct {
		Pins []string `json:"Pins"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if errors.Is(err, io.EOF) {
			return []string{cid}, nil
		}
		return nil, fmt.Errorf("failed to decode unpin response: %w", err)
	}

	if len(result.Pins) == 0 {
		result.Pins = []string{cid}
	}

	return result.Pins, nil
}

// GC triggers garbage collection on the node. An empty response body means
// there was nothing to collect.
func (c *Client) GC(ctx context.Context) (*GCResult, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/repo/gc", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gc request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gc request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: "repo/gc", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	// The node streams one NDJSON object per reclaimed block
	dec := json.NewDecoder(resp.Body)
	result := &GCResult{Removed: []string{}}

	for {
		var entry struct {
			Key struct {
				Slash string `json:"/"`
			} `json:"Key"`
			Error string `json:"Error"`
		}
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode gc response: %w", err)
		}
		if entry.Error != "" {
			result.Errors = append(result.Errors, entry.Error)
			continue
		}
		if entry.Key.Slash != "" {
			result.Removed = append(result.Removed, entry.Key.Slash)
		}
	}

	c.logger.Debug("Garbage collection completed",
		zap.Int("removed", len(result.Removed)),
		zap.Int("errors", len(result.Errors)))

	return result, nil
}

// Fetch retrieves an object from the gateway by CID. A non-200 answer is
// returned as a StatusError carrying the gateway's error text.
func (c *Client) Fetch(ctx context.Context, cid string) (*ObjectData, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.gatewayURL+"/"+cid, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create fetch request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &StatusError{Op: "fetch", StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return &ObjectData{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		Disposition: resp.Header.Get("Content-Disposition"),
	}, nil
}

// Close closes the IPFS client connection
func (c *Client) Close(ctx context.Context) error {
	// HTTP client doesn't need explicit closing
	return nil
}
