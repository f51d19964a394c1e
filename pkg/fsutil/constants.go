package fsutil

// File and directory permission constants.
// These follow standard Unix permission conventions and are used consistently
// throughout the application.
const (
	// Default file modes.
	FileModeDefault = 0o644 // -rw-r--r--: Default for regular files

	// Directory modes.
	DirModeDefault = 0o755 // drwxr-xr-x: Default for directories
)
