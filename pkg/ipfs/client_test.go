package ipfs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()

	t.Run("default_config", func(t *testing.T) {
		cfg := Config{}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		if client.apiURL != "http://127.0.0.1:5001/api/v0" {
			t.Errorf("Expected default API URL 'http://127.0.0.1:5001/api/v0', got %s", client.apiURL)
		}

		if client.gatewayURL != "http://127.0.0.1:8080/ipfs" {
			t.Errorf("Expected default gateway URL 'http://127.0.0.1:8080/ipfs', got %s", client.gatewayURL)
		}

		if client.httpClient.Timeout != 30*time.Second {
			t.Errorf("Expected default timeout 30s, got %v", client.httpClient.Timeout)
		}
	})

	t.Run("custom_config", func(t *testing.T) {
		cfg := Config{
			APIURL:     "http://custom:5001/api/v0",
			GatewayURL: "http://custom:8080/ipfs",
			Timeout:    10 * time.Second,
		}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		if client.apiURL != "http://custom:5001/api/v0" {
			t.Errorf("Expected API URL 'http://custom:5001/api/v0', got %s", client.apiURL)
		}

		if client.httpClient.Timeout != 10*time.Second {
			t.Errorf("Expected timeout 10s, got %v", client.httpClient.Timeout)
		}
	})

	t.Run("trailing_slash_trimmed", func(t *testing.T) {
		cfg := Config{
			APIURL:     "http://custom:5001/api/v0/",
			GatewayURL: "http://custom:8080/ipfs/",
		}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		if client.apiURL != "http://custom:5001/api/v0" {
			t.Errorf("Expected trimmed API URL, got %s", client.apiURL)
		}
		if client.gatewayURL != "http://custom:8080/ipfs" {
			t.Errorf("Expected trimmed gateway URL, got %s", client.gatewayURL)
		}
	})
}

func TestClient_Pins(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pin/ls" {
				t.Errorf("Expected path '/pin/ls', got %s", r.URL.Path)
			}
			if r.Method != "GET" {
				t.Errorf("Expected method GET, got %s", r.Method)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"Keys":{"Qm123":{"Type":"recursive"},"Qm456":{"Type":"direct"}}}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		pins, err := client.Pins(context.Background())
		if err != nil {
			t.Fatalf("Failed to list pins: %v", err)
		}

		if len(pins) != 2 {
			t.Errorf("Expected 2 pins, got %d", len(pins))
		}
		if pins["Qm123"].Type != "recursive" {
			t.Errorf("Expected recursive pin, got %s", pins["Qm123"].Type)
		}
		if !pins.Contains("Qm456") {
			t.Error("Expected Qm456 in pin set")
		}
		if pins.Contains("QmMissing") {
			t.Error("Did not expect QmMissing in pin set")
		}
	})

	t.Run("empty_keys", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"Keys":{}}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		pins, err := client.Pins(context.Background())
		if err != nil {
			t.Fatalf("Failed to list pins: %v", err)
		}
		if pins == nil {
			t.Fatal("Expected non-nil pin set")
		}
		if len(pins) != 0 {
			t.Errorf("Expected empty pin set, got %d entries", len(pins))
		}
	})

	t.Run("missing_keys_field", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		pins, err := client.Pins(context.Background())
		if err != nil {
			t.Fatalf("Failed to list pins: %v", err)
		}
		if pins == nil {
			t.Fatal("Expected non-nil pin set for missing Keys field")
		}
	})

	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("pin service down"))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.Pins(context.Background())
		if err == nil {
			t.Fatal("Expected error for server error")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Expected StatusError, got %T", err)
		}
		if statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", statusErr.StatusCode)
		}
		if statusErr.Body != "pin service down" {
			t.Errorf("Expected body 'pin service down', got %q", statusErr.Body)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		cfg := Config{APIURL: "http://127.0.0.1:1/api/v0", Timeout: time.Second}
		client, _ := NewClient(cfg, logger)

		_, err := client.Pins(context.Background())
		if err == nil {
			t.Fatal("Expected error for unreachable endpoint")
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			t.Error("Expected transport error, got StatusError")
		}
	})
}

func TestClient_Add(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		expectedCID := "QmTest123"
		expectedName := "test.txt"
		testContent := "test content"
		expectedBytes := int64(len(testContent))

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/add" {
				t.Errorf("Expected path '/add', got %s", r.URL.Path)
			}
			if r.Method != "POST" {
				t.Errorf("Expected method POST, got %s", r.Method)
			}

			if err := r.ParseMultipartForm(32 << 20); err != nil {
				t.Errorf("Failed to parse multipart form: %v", err)
				return
			}

			file, header, err := r.FormFile("file")
			if err != nil {
				t.Errorf("Failed to get file: %v", err)
				return
			}
			defer file.Close()

			if header.Filename != expectedName {
				t.Errorf("Expected filename %s, got %s", expectedName, header.Filename)
			}
			if got := header.Header.Get("Content-Type"); got != "text/plain" {
				t.Errorf("Expected part content type text/plain, got %s", got)
			}

			data, _ := io.ReadAll(file)
			if string(data) != testContent {
				t.Errorf("Expected content %q, got %q", testContent, string(data))
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{
				"Name": expectedName,
				"Hash": expectedCID,
				"Size": "999",
			})
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		resp, err := client.Add(context.Background(), strings.NewReader(testContent), expectedName, "text/plain")
		if err != nil {
			t.Fatalf("Failed to add content: %v", err)
		}

		if resp.Hash != expectedCID {
			t.Errorf("Expected CID %s, got %s", expectedCID, resp.Hash)
		}
		if resp.Name != expectedName {
			t.Errorf("Expected name %s, got %s", expectedName, resp.Name)
		}
		if resp.Bytes != expectedBytes {
			t.Errorf("Expected %d bytes, got %d", expectedBytes, resp.Bytes)
		}
		if resp.Size != "999" {
			t.Errorf("Expected node-reported size 999, got %s", resp.Size)
		}
	})

	t.Run("ndjson_stream_keeps_last", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Progress objects followed by the final result
			w.Write([]byte(`{"Name":"big.bin","Bytes":262144}` + "\n"))
			w.Write([]byte(`{"Name":"big.bin","Bytes":524288}` + "\n"))
			w.Write([]byte(`{"Name":"big.bin","Hash":"QmFinal","Size":"524299"}` + "\n"))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		resp, err := client.Add(context.Background(), strings.NewReader("data"), "big.bin", "")
		if err != nil {
			t.Fatalf("Failed to add content: %v", err)
		}
		if resp.Hash != "QmFinal" {
			t.Errorf("Expected final CID QmFinal, got %s", resp.Hash)
		}
	})

	t.Run("missing_cid", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(""))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.Add(context.Background(), strings.NewReader("data"), "x", "")
		if err == nil {
			t.Error("Expected error for empty add response")
		}
	})

	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("internal error"))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.Add(context.Background(), strings.NewReader("test"), "test.txt", "")
		if err == nil {
			t.Fatal("Expected error for server error")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Expected StatusError, got %T", err)
		}
		if statusErr.Op != "add" {
			t.Errorf("Expected op 'add', got %s", statusErr.Op)
		}
	})
}

func TestClient_Unpin(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		expectedCID := "QmUnpin123"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pin/rm/"+expectedCID {
				t.Errorf("Expected path '/pin/rm/%s', got %s", expectedCID, r.URL.Path)
			}
			if r.Method != "GET" {
				t.Errorf("Expected method GET, got %s", r.Method)
			}

			w.Write([]byte(`{"Pins":["` + expectedCID + `"]}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		pins, err := client.Unpin(context.Background(), expectedCID)
		if err != nil {
			t.Fatalf("Failed to unpin: %v", err)
		}
		if len(pins) != 1 || pins[0] != expectedCID {
			t.Errorf("Expected [%s], got %v", expectedCID, pins)
		}
	})

	t.Run("empty_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		pins, err := client.Unpin(context.Background(), "QmTest")
		if err != nil {
			t.Fatalf("Expected success for empty body, got: %v", err)
		}
		if len(pins) != 1 || pins[0] != "QmTest" {
			t.Errorf("Expected fallback to requested CID, got %v", pins)
		}
	})

	t.Run("not_pinned", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"Message":"not pinned or pinned indirectly","Code":0}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.Unpin(context.Background(), "QmNotPinned")
		if err == nil {
			t.Fatal("Expected error for unpin failure")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Expected StatusError, got %T", err)
		}
		if !strings.Contains(statusErr.Body, "not pinned") {
			t.Errorf("Expected node error text preserved, got %q", statusErr.Body)
		}
	})
}

func TestClient_GC(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/repo/gc" {
				t.Errorf("Expected path '/repo/gc', got %s", r.URL.Path)
			}
			if r.Method != "GET" {
				t.Errorf("Expected method GET, got %s", r.Method)
			}

			w.Write([]byte(`{"Key":{"/":"QmRemoved1"}}` + "\n"))
			w.Write([]byte(`{"Key":{"/":"QmRemoved2"}}` + "\n"))
			w.Write([]byte(`{"Error":"block locked"}` + "\n"))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		result, err := client.GC(context.Background())
		if err != nil {
			t.Fatalf("Failed to run gc: %v", err)
		}

		if len(result.Removed) != 2 {
			t.Errorf("Expected 2 removed blocks, got %d", len(result.Removed))
		}
		if result.Removed[0] != "QmRemoved1" {
			t.Errorf("Expected QmRemoved1 first, got %s", result.Removed[0])
		}
		if len(result.Errors) != 1 || result.Errors[0] != "block locked" {
			t.Errorf("Expected gc error preserved, got %v", result.Errors)
		}
	})

	t.Run("empty_body_means_nothing_to_collect", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		result, err := client.GC(context.Background())
		if err != nil {
			t.Fatalf("Expected success for empty body, got: %v", err)
		}
		if len(result.Removed) != 0 {
			t.Errorf("Expected no removed blocks, got %v", result.Removed)
		}
	})

	t.Run("server_error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("gc failed"))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.GC(context.Background())
		if err == nil {
			t.Error("Expected error for server error")
		}
	})
}

func TestClient_Fetch(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		expectedCID := "QmGet123"
		expectedContent := "test content from gateway"

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/"+expectedCID {
				t.Errorf("Expected path '/%s', got %s", expectedCID, r.URL.Path)
			}
			if r.Method != "GET" {
				t.Errorf("Expected method GET, got %s", r.Method)
			}

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
			w.Write([]byte(expectedContent))
		}))
		defer server.Close()

		cfg := Config{GatewayURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		obj, err := client.Fetch(context.Background(), expectedCID)
		if err != nil {
			t.Fatalf("Failed to fetch object: %v", err)
		}

		if string(obj.Body) != expectedContent {
			t.Errorf("Expected content %q, got %q", expectedContent, string(obj.Body))
		}
		if obj.ContentType != "text/plain; charset=utf-8" {
			t.Errorf("Expected content type header preserved, got %q", obj.ContentType)
		}
		if obj.Disposition != `attachment; filename="notes.txt"` {
			t.Errorf("Expected disposition header preserved, got %q", obj.Disposition)
		}
	})

	t.Run("missing_headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Suppress the content type Go would otherwise sniff
			w.Header()["Content-Type"] = nil
			w.Write([]byte{0x01, 0x02})
		}))
		defer server.Close()

		cfg := Config{GatewayURL: server.URL}
		client, _ := NewClient(cfg, logger)

		obj, err := client.Fetch(context.Background(), "QmBin")
		if err != nil {
			t.Fatalf("Failed to fetch object: %v", err)
		}
		if obj.ContentType != "" {
			t.Errorf("Expected empty content type, got %q", obj.ContentType)
		}
		if obj.Disposition != "" {
			t.Errorf("Expected empty disposition, got %q", obj.Disposition)
		}
	})

	t.Run("gateway_error_carries_body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("ipfs resolve -r: could not resolve"))
		}))
		defer server.Close()

		cfg := Config{GatewayURL: server.URL}
		client, _ := NewClient(cfg, logger)

		_, err := client.Fetch(context.Background(), "QmBroken")
		if err == nil {
			t.Fatal("Expected error for gateway failure")
		}

		var statusErr *StatusError
		if !errors.As(err, &statusErr) {
			t.Fatalf("Expected StatusError, got %T", err)
		}
		if statusErr.StatusCode != http.StatusInternalServerError {
			t.Errorf("Expected status 500, got %d", statusErr.StatusCode)
		}
		if statusErr.Body != "ipfs resolve -r: could not resolve" {
			t.Errorf("Expected gateway error text preserved, got %q", statusErr.Body)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		cfg := Config{GatewayURL: "http://127.0.0.1:1/ipfs", Timeout: time.Second}
		client, _ := NewClient(cfg, logger)

		_, err := client.Fetch(context.Background(), "QmAny")
		if err == nil {
			t.Fatal("Expected error for unreachable gateway")
		}
		if !strings.Contains(err.Error(), "gateway request failed") {
			t.Errorf("Expected transport error wrapping, got: %v", err)
		}
	})
}

func TestClient_Health(t *testing.T) {
	logger := zap.NewNop()

	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/pin/ls" {
				t.Errorf("Expected path '/pin/ls', got %s", r.URL.Path)
			}
			w.Write([]byte(`{"Keys":{}}`))
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, err := NewClient(cfg, logger)
		if err != nil {
			t.Fatalf("Failed to create client: %v", err)
		}

		err = client.Health(context.Background())
		if err != nil {
			t.Fatalf("Failed health check: %v", err)
		}
	})

	t.Run("unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := Config{APIURL: server.URL}
		client, _ := NewClient(cfg, logger)

		err := client.Health(context.Background())
		if err == nil {
			t.Error("Expected error for unhealthy status")
		}
	})
}

func TestStatusError(t *testing.T) {
	err := &StatusError{Op: "fetch", StatusCode: 502, Body: "bad gateway"}
	expected := "fetch failed with status 502: bad gateway"
	if err.Error() != expected {
		t.Errorf("Expected %q, got %q", expected, err.Error())
	}
}

func TestClient_Close(t *testing.T) {
	logger := zap.NewNop()

	cfg := Config{}
	client, err := NewClient(cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	// Close should not error
	err = client.Close(context.Background())
	if err != nil {
		t.Errorf("Close should not error, got: %v", err)
	}
}
