package store

import (
	"fmt"
	"time"

	"github.com/glorpus-work/siphon/internal/logger"
)

// StoreOperation wraps a Manager with human-readable output for the CLI.
type StoreOperation struct {
	manager Manager
}

// NewStoreOperation creates a new store operation instance.
func NewStoreOperation(manager Manager) *StoreOperation {
	return &StoreOperation{
		manager: manager,
	}
}

// Clean cleans the store based on the provided options.
func (op *StoreOperation) Clean(all bool, host string) (string, error) {
	options := CleanOptions{
		All:  all,
		Host: host,
	}

	logger.Debug("Cleaning store", logger.Fields{
		"all":  options.All,
		"host": options.Host,
	})

	result, err := op.manager.Clean(options)
	if err != nil {
		return "", fmt.Errorf("failed to clean store: %w", err)
	}

	if result.TotalFreed == 0 && result.FilesRemoved == 0 {
		return "No files were removed from the store.", nil
	}

	return fmt.Sprintf("Successfully cleaned store. Removed %d files, freed %s of disk space.",
		result.FilesRemoved, formatBytes(result.TotalFreed)), nil
}

// GetInfo returns information about the store.
func (op *StoreOperation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", fmt.Errorf("failed to get store info: %w", err)
	}

	lastUsed := "never"
	if !info.LastUsed.IsZero() {
		lastUsed = info.LastUsed.Format(time.RFC1123)
	}

	msg := fmt.Sprintf(`Store Information:
  Directory:   %s
  Total Size:  %s
  Total Files: %d
  Last Used:   %s`,
		info.Directory,
		formatBytes(info.TotalSize),
		info.TotalFiles,
		lastUsed,
	)

	for _, host := range info.Hosts {
		msg += fmt.Sprintf("\n  - %s: %s (%d files)", host.Name, formatBytes(host.Size), host.Files)
	}

	return msg, nil
}

// GetDirectory returns the store directory path.
func (op *StoreOperation) GetDirectory() string {
	return op.manager.GetDirectory()
}

// SetDirectory sets a new store directory.
func (op *StoreOperation) SetDirectory(dir string) error {
	logger.Debug("Setting store directory", logger.Fields{"directory": dir})
	return op.manager.SetDirectory(dir)
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
