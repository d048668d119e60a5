// Package integration runs the playlistkit binary against served playlists.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

// TestHarness serves playlist files over HTTP and runs one playlistkit API.
type TestHarness struct {
	t          *testing.T
	httpServer *http.Server
	httpPort   int
	apiCmd     *exec.Cmd
	apiPort    int
	tempDir    string
	cancel     context.CancelFunc
}

// NewTestHarness creates a new test harness.
func NewTestHarness(t *testing.T) *TestHarness {
	t.Helper()

	return &TestHarness{
		t:        t,
		httpPort: findAvailablePort(t),
		apiPort:  findAvailablePort(t),
	}
}

// StartHTTPServer serves a temporary directory of playlist files.
func (h *TestHarness) StartHTTPServer() {
	h.t.Helper()

	h.tempDir = h.t.TempDir()
	h.httpServer = startFileServer(h.t, h.tempDir, h.httpPort)
	h.t.Logf("HTTP server started on port %d", h.httpPort)
}

// AddPlaylist writes a playlist to the served directory and returns its URL.
// Must be called after StartHTTPServer.
func (h *TestHarness) AddPlaylist(content, name string) string {
	h.t.Helper()

	if h.tempDir == "" {
		h.t.Fatal("StartHTTPServer must be called before AddPlaylist")
	}
	writePlaylist(h.t, h.tempDir, name, content)

	return fmt.Sprintf("http://localhost:%d/%s", h.httpPort, name)
}

// StartAPI starts playlistkit -serve.
func (h *TestHarness) StartAPI() {
	h.t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel

	h.apiCmd = exec.CommandContext(ctx, findBinary(h.t),
		"-serve",
		"-port", strconv.Itoa(h.apiPort),
	)
	h.apiCmd.Stdout = os.Stdout
	h.apiCmd.Stderr = os.Stderr

	if err := h.apiCmd.Start(); err != nil {
		h.t.Fatalf("failed to start playlistkit: %v", err)
	}

	waitForServer(h.t, h.apiURL("/health"), 10*time.Second)
	h.t.Logf("playlistkit started on port %d", h.apiPort)
}

// Inspect calls /inspect for playlistURL and decodes the JSON reply.
func (h *TestHarness) Inspect(playlistURL string) (int, map[string]any) {
	h.t.Helper()
	return getJSON(h.t, h.apiURL("/inspect?url="+url.QueryEscape(playlistURL)))
}

// Catalog returns the catalog entries listed by the API.
func (h *TestHarness) Catalog() []any {
	h.t.Helper()

	_, body := getJSON(h.t, h.apiURL("/catalog"))
	entries, _ := body["entries"].([]any)
	return entries
}

func (h *TestHarness) apiURL(path string) string {
	return fmt.Sprintf("http://localhost:%d%s", h.apiPort, path)
}

// Cleanup stops all running services.
func (h *TestHarness) Cleanup() {
	h.t.Helper()

	if h.cancel != nil {
		h.cancel()
	}
	if h.apiCmd != nil && h.apiCmd.Process != nil {
		h.apiCmd.Process.Kill()
		h.apiCmd.Wait()
	}

	if h.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.httpServer.Shutdown(ctx)
	}
}

// startFileServer serves dir on port and waits until it answers.
func startFileServer(t *testing.T, dir string, port int) *http.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(dir)))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("HTTP server error: %v", err)
		}
	}()

	waitForServer(t, fmt.Sprintf("http://localhost:%d", port), 5*time.Second)
	return srv
}

func writePlaylist(t *testing.T, dir, name, content string) {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		t.Fatalf("failed to create playlist directory: %v", err)
	}
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test playlist: %v", err)
	}
}

// findBinary locates a prebuilt playlistkit binary, skipping the test if
// there is none.
func findBinary(t *testing.T) string {
	t.Helper()

	candidates := []string{
		"../../playlistkit",             // From test/integration
		"./playlistkit",                 // From project root
		"./cmd/playlistkit/playlistkit", // Built in place
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, _ := filepath.Abs(path)
			t.Logf("Found playlistkit binary at: %s", absPath)
			return absPath
		}
	}

	t.Skip("playlistkit binary not found. Run 'go build -o playlistkit ./cmd/playlistkit' first")
	return ""
}

func getJSON(t *testing.T, rawURL string) (int, map[string]any) {
	t.Helper()

	resp, err := http.Get(rawURL)
	if err != nil {
		t.Fatalf("GET %s: %v", rawURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}

	var out map[string]any
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("invalid JSON from %s: %v\n%s", rawURL, err, body)
	}

	return resp.StatusCode, out
}

// waitForServer waits for a server to become available.
func waitForServer(t *testing.T, rawURL string, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(rawURL)
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(100 * time.Millisecond)
	}

	t.Fatalf("server at %s did not become available within %v", rawURL, timeout)
}

// findAvailablePort finds an available TCP port.
func findAvailablePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find available port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}

// WaitForCondition polls until a condition is met or timeout occurs.
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration, description string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if condition() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for condition: %s", description)
		}
	}
}
