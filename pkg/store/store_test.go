package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glorpus-work/siphon/pkg/store"
)

// setupTestStore lays out a small mirror tree with two host directories.
func setupTestStore(t *testing.T, dir string) {
	t.Helper()

	files := map[string]string{
		"example_com/a/b.m3u8":          "#EXTM3U",
		"example_com/a/seg01.ts":        "segment data one",
		"cdn_example_org/media/seg.ts":  "segment data two",
		"cdn_example_org/media/seg2.ts": "segment data three",
	}

	for path, content := range files {
		fullPath := filepath.Join(dir, path)
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

func TestNewManagerWithDifferentDirectories(t *testing.T) {
	tests := []struct {
		name      string
		directory string
	}{
		{"empty directory", ""},
		{"valid directory", t.TempDir()},
		{"non-existent directory", filepath.Join(t.TempDir(), "nonexistent")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := store.NewManager(tt.directory)
			assert.NotNil(t, mgr)
			assert.Equal(t, tt.directory, mgr.GetDirectory())
		})
	}
}

func TestSetDirectory(t *testing.T) {
	tests := []struct {
		name        string
		directory   string
		expectError bool
	}{
		{
			name:        "valid directory",
			directory:   t.TempDir(),
			expectError: false,
		},
		{
			name:        "empty directory",
			directory:   "",
			expectError: true,
		},
		{
			name:        "non-existent directory",
			directory:   filepath.Join(t.TempDir(), "nonexistent"),
			expectError: false, // Should not error for non-existent dirs
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			mgr := store.NewManager(t.TempDir())

			err := mgr.SetDirectory(testCase.directory)

			if testCase.expectError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, testCase.directory, mgr.GetDirectory())
			}
		})
	}
}

func TestGetInfo(t *testing.T) {
	tempDir := t.TempDir()
	setupTestStore(t, tempDir)

	mgr := store.NewManager(tempDir)

	info, err := mgr.GetInfo()
	require.NoError(t, err)
	assert.Equal(t, tempDir, info.Directory)
	assert.Equal(t, 4, info.TotalFiles)
	assert.Positive(t, info.TotalSize)

	require.Len(t, info.Hosts, 2)
	assert.Equal(t, "cdn_example_org", info.Hosts[0].Name, "hosts are sorted by name")
	assert.Equal(t, 2, info.Hosts[0].Files)
	assert.Equal(t, "example_com", info.Hosts[1].Name)
	assert.Equal(t, 2, info.Hosts[1].Files)
}

func TestGetInfoMissingDirectory(t *testing.T) {
	mgr := store.NewManager(filepath.Join(t.TempDir(), "nonexistent"))

	info, err := mgr.GetInfo()
	require.NoError(t, err)
	assert.Zero(t, info.TotalFiles)
	assert.Empty(t, info.Hosts)
}

func TestCleanAll(t *testing.T) {
	tempDir := t.TempDir()
	setupTestStore(t, tempDir)

	mgr := store.NewManager(tempDir)

	result, err := mgr.Clean(store.CleanOptions{All: true})
	require.NoError(t, err)
	assert.Equal(t, 4, result.FilesRemoved)
	assert.Positive(t, result.TotalFreed)

	// Host directories are recreated empty.
	entries, err := os.ReadDir(filepath.Join(tempDir, "example_com"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCleanSingleHost(t *testing.T) {
	tempDir := t.TempDir()
	setupTestStore(t, tempDir)

	mgr := store.NewManager(tempDir)

	result, err := mgr.Clean(store.CleanOptions{Host: "example_com"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.FilesRemoved)

	// The other host is untouched.
	_, err = os.Stat(filepath.Join(tempDir, "cdn_example_org", "media", "seg.ts"))
	require.NoError(t, err)
}

func TestCleanNothingRequested(t *testing.T) {
	tempDir := t.TempDir()
	setupTestStore(t, tempDir)

	mgr := store.NewManager(tempDir)

	result, err := mgr.Clean(store.CleanOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.FilesRemoved)
	assert.Zero(t, result.TotalFreed)

	// Everything is still in place.
	_, err = os.Stat(filepath.Join(tempDir, "example_com", "a", "b.m3u8"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(tempDir, "cdn_example_org", "media", "seg.ts"))
	require.NoError(t, err)
}

func TestCleanEmptyStore(t *testing.T) {
	mgr := store.NewManager(filepath.Join(t.TempDir(), "nonexistent"))

	result, err := mgr.Clean(store.CleanOptions{All: true})
	require.NoError(t, err)
	assert.Zero(t, result.TotalFreed)
	assert.Zero(t, result.FilesRemoved)
}

func TestStoreOperationMessages(t *testing.T) {
	tempDir := t.TempDir()
	setupTestStore(t, tempDir)

	op := store.NewStoreOperation(store.NewManager(tempDir))

	infoMsg, err := op.GetInfo()
	require.NoError(t, err)
	assert.Contains(t, infoMsg, tempDir)
	assert.Contains(t, infoMsg, "example_com")

	cleanMsg, err := op.Clean(true, "")
	require.NoError(t, err)
	assert.Contains(t, cleanMsg, "Removed 4 files")

	cleanMsg, err = op.Clean(true, "")
	require.NoError(t, err)
	assert.Contains(t, cleanMsg, "No files were removed")
}
