//go:build integration

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/siphon/test/testutil"
)

// startFileServer serves the given files and returns the server plus the
// sanitized directory name its host maps to.
func startFileServer(t *testing.T, files map[string]string) (*httptest.Server, string) {
	t.Helper()

	srcDir := t.TempDir()
	testutil.WriteSourceTree(t, srcDir, files)

	srv := httptest.NewServer(http.FileServer(http.Dir(srcDir)))
	t.Cleanup(srv.Close)

	parsed, err := url.Parse(srv.URL)
	require.NoError(t, err)
	hostDir := strings.NewReplacer(".", "_", ":", "_").Replace(parsed.Host)

	return srv, hostDir
}

func runCLI(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestFetchDownloadsFiles(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{
		"a/b.m3u8":  "#EXTM3U",
		"a/seg1.ts": "first segment",
	})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	err := runCLI(t, "fetch", "--config", configPath,
		srv.URL+"/a/b.m3u8", srv.URL+"/a/seg1.ts")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(mirror, hostDir, "a", "b.m3u8"))
	require.NoError(t, err)
	assert.Equal(t, "#EXTM3U", string(content))

	content, err = os.ReadFile(filepath.Join(mirror, hostDir, "a", "seg1.ts"))
	require.NoError(t, err)
	assert.Equal(t, "first segment", string(content))
}

func TestFetchIsIdempotent(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{"f.ts": "payload"})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	require.NoError(t, runCLI(t, "fetch", "--config", configPath, srv.URL+"/f.ts"))

	path := filepath.Join(mirror, hostDir, "f.ts")
	first, err := os.Stat(path)
	require.NoError(t, err)

	// A second run must leave the complete file untouched.
	require.NoError(t, runCLI(t, "fetch", "--config", configPath, srv.URL+"/f.ts"))

	second, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, first.ModTime(), second.ModTime(), "file should not be rewritten")
}

func TestFetchFromListFile(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{
		"one.ts": "one",
		"two.ts": "two",
	})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	listPath := filepath.Join(t.TempDir(), "list.yaml")
	listContent := "uris:\n  - " + srv.URL + "/one.ts\n  - " + srv.URL + "/two.ts\n"
	require.NoError(t, os.WriteFile(listPath, []byte(listContent), 0o644))

	require.NoError(t, runCLI(t, "fetch", "--config", configPath, "--list", listPath))

	for _, name := range []string{"one.ts", "two.ts"} {
		_, err := os.Stat(filepath.Join(mirror, hostDir, name))
		require.NoError(t, err, "%s should have been downloaded", name)
	}
}

func TestFetchMissingURIFails(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{"good.ts": "good"})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	err := runCLI(t, "fetch", "--config", configPath,
		srv.URL+"/good.ts", srv.URL+"/missing.ts")
	require.Error(t, err, "a 404 should surface as an error")

	// The good URI must still have been downloaded.
	_, statErr := os.Stat(filepath.Join(mirror, hostDir, "good.ts"))
	require.NoError(t, statErr)
}

func TestFetchNoURIs(t *testing.T) {
	configPath := testutil.SetupTestConfig(t, t.TempDir())

	err := runCLI(t, "fetch", "--config", configPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no URIs")
}

func TestFetchWithHooks(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{"f.ts": "payload"})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	hooksDir := t.TempDir()
	hookScript := `err := ""
if localPath == "" {
    err = "no local path passed to hook"
}`
	require.NoError(t, os.WriteFile(filepath.Join(hooksDir, "post-download.tengo"), []byte(hookScript), 0o644))

	require.NoError(t, runCLI(t, "fetch", "--config", configPath, "--hooks-dir", hooksDir, srv.URL+"/f.ts"))

	_, err := os.Stat(filepath.Join(mirror, hostDir, "f.ts"))
	require.NoError(t, err)
}

func TestResolveCommand(t *testing.T) {
	configPath := testutil.SetupTestConfig(t, "/data")

	output, err := captureStdout(t, func() error {
		return runCLI(t, "resolve", "--config", configPath, "http://example.com/a/b.m3u8")
	})
	require.NoError(t, err)
	assert.Contains(t, output, filepath.Join("/data", "example_com", "a", "b.m3u8"))
}

func TestStoreInfoAndClean(t *testing.T) {
	srv, hostDir := startFileServer(t, map[string]string{"f.ts": "payload"})

	mirror := t.TempDir()
	configPath := testutil.SetupTestConfig(t, mirror)

	require.NoError(t, runCLI(t, "fetch", "--config", configPath, srv.URL+"/f.ts"))

	output, err := captureStdout(t, func() error {
		return runCLI(t, "store", "info", "--config", configPath)
	})
	require.NoError(t, err)
	assert.Contains(t, output, hostDir)

	require.NoError(t, runCLI(t, "store", "clean", "--config", configPath))

	entries, err := os.ReadDir(filepath.Join(mirror, hostDir))
	require.NoError(t, err)
	assert.Empty(t, entries, "clean should empty the host directory")
}
