package store

import "time"

// Manager defines the interface for mirror store management operations.
type Manager interface {
	Clean(options CleanOptions) (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	SetDirectory(dir string) error
}

// CleanOptions specifies what to clean from the store.
type CleanOptions struct {
	// All removes every mirrored host directory.
	All bool
	// Host removes only the directory for a single sanitized host name.
	Host string
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	FilesRemoved int
}

// HostInfo describes one host directory inside the store.
type HostInfo struct {
	Name  string
	Size  int64
	Files int
}

// Info represents mirror store information.
type Info struct {
	Directory  string
	TotalSize  int64
	TotalFiles int
	Hosts      []HostInfo
	LastUsed   time.Time
}
