// Package store inspects and cleans the on-disk mirror directory. The layout
// it manages is one subdirectory per sanitized host, with the mirrored paths
// below it.
package store

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/glorpus-work/siphon/pkg/errors"
	"github.com/glorpus-work/siphon/pkg/fsutil"
)

// DefaultManager implements the Manager interface for store operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a new store manager for the given mirror directory.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// Clean removes mirrored files according to the specified options. A named
// host takes precedence over All; with neither set, nothing is removed.
func (sm *DefaultManager) Clean(options CleanOptions) (*CleanResult, error) {
	if sm.directory == "" {
		return nil, errors.ErrStoreDirectory
	}

	result := &CleanResult{}

	if options.Host != "" {
		size, files, err := cleanDirectory(filepath.Join(sm.directory, options.Host))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrStoreClean, "host %s: %v", options.Host, err)
		}
		result.TotalFreed = size
		result.FilesRemoved = files
		return result, nil
	}

	if !options.All {
		return result, nil
	}

	entries, err := os.ReadDir(sm.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, errors.Wrapf(errors.ErrStoreClean, "%v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		size, files, err := cleanDirectory(filepath.Join(sm.directory, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrStoreClean, "host %s: %v", entry.Name(), err)
		}
		result.TotalFreed += size
		result.FilesRemoved += files
	}

	return result, nil
}

// GetInfo returns information about the store.
func (sm *DefaultManager) GetInfo() (*Info, error) {
	if sm.directory == "" {
		return nil, errors.ErrStoreDirectory
	}

	info := &Info{
		Directory: sm.directory,
		LastUsed:  time.Now(),
	}

	entries, err := os.ReadDir(sm.directory)
	if err != nil {
		if os.IsNotExist(err) {
			return info, nil
		}
		return nil, errors.Wrapf(errors.ErrStoreInfo, "%v", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		size, files, err := getDirSizeAndFiles(filepath.Join(sm.directory, entry.Name()))
		if err != nil {
			return nil, errors.Wrapf(errors.ErrStoreInfo, "host %s: %v", entry.Name(), err)
		}
		info.Hosts = append(info.Hosts, HostInfo{Name: entry.Name(), Size: size, Files: files})
		info.TotalSize += size
		info.TotalFiles += files
	}

	sort.Slice(info.Hosts, func(i, j int) bool { return info.Hosts[i].Name < info.Hosts[j].Name })

	return info, nil
}

// GetDirectory returns the store directory path.
func (sm *DefaultManager) GetDirectory() string {
	return sm.directory
}

// SetDirectory sets the store directory path.
func (sm *DefaultManager) SetDirectory(dir string) error {
	if dir == "" {
		return errors.ErrStoreDirectory
	}
	sm.directory = dir
	return nil
}

// cleanDirectory removes a directory and returns bytes and files freed. The
// directory is recreated empty so later downloads land without surprises.
func cleanDirectory(dir string) (int64, int, error) {
	size, files, err := getDirSizeAndFiles(dir)
	if err != nil {
		return 0, 0, err
	}
	if size == 0 && files == 0 {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return 0, 0, nil
		}
	}

	if err := os.RemoveAll(dir); err != nil {
		return 0, 0, err
	}
	if err := fsutil.EnsureDir(dir); err != nil {
		return size, files, err
	}

	return size, files, nil
}

// getDirSizeAndFiles calculates directory size and file count.
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count, err
}
