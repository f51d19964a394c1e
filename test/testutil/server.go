// Package testutil provides helpers for integration tests: a file-serving
// HTTP server and temporary config files.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestServer represents a test HTTP server for testing
type TestServer struct {
	Server *http.Server
	URL    string
}

// NewTestServer creates a new test server that serves files from the given directory
func NewTestServer(port int, dir string) *TestServer {
	handler := http.FileServer(http.Dir(dir))
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	return &TestServer{
		Server: server,
		URL:    fmt.Sprintf("http://localhost:%d", port),
	}
}

// Start starts the test server
func (ts *TestServer) Start(t *testing.T) {
	t.Helper()
	go func() {
		if err := ts.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("Test server error: %v", err)
		}
	}()

	// Give the server a moment to start
	time.Sleep(100 * time.Millisecond)
}

// Stop stops the test server
func (ts *TestServer) Stop(t *testing.T) {
	t.Helper()
	if ts.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if err := ts.Server.Shutdown(ctx); err != nil {
			t.Logf("Error shutting down test server: %v", err)
		}
	}
}

// WriteSourceTree creates the given files under dir so a TestServer can serve them.
func WriteSourceTree(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", path, err)
		}
		if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
}

// SetupTestConfig writes a minimal config file pointing at downloadDir and
// returns its path.
func SetupTestConfig(t *testing.T, downloadDir string) string {
	t.Helper()

	configStr := fmt.Sprintf(`settings:
  download_dir: %s
  workers: 2
  http_timeout: 5s
  max_retries: 1
  retry_wait_min: 1ms
  retry_wait_max: 10ms
  log_level: debug
`, downloadDir)

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return configPath
}
