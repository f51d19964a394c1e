package hook

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/glorpus-work/siphon/pkg/errors"
)

// HookFileExtensions lists the supported hook file extensions.
var HookFileExtensions = map[string]bool{
	".tengo": true,
}

// LoadHooksFromDir loads all hook files from a directory. A file named
// <hook-type>.tengo registers a script for that hook type; files with
// unknown names or extensions are skipped. A missing directory is not an
// error.
func LoadHooksFromDir(manager HookManager, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(errors.ErrHookLoad, "could not read hooks directory %s: %v", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if _, ok := HookFileExtensions[ext]; !ok {
			continue
		}

		hookType := HookType(strings.TrimSuffix(entry.Name(), ext))
		switch hookType {
		case PreDownload, PostDownload, PreRun, PostRun:
			// Valid hook type
		default:
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return errors.Wrapf(errors.ErrHookLoad, "could not read hook file %s: %v", entry.Name(), err)
		}

		if err := manager.AddHook(Hook{
			Type:    hookType,
			Content: string(content),
		}); err != nil {
			return errors.Wrapf(err, "could not add hook %s", hookType)
		}
	}

	return nil
}

// HookTemplate generates a template for a hook script.
func HookTemplate(hookType HookType) string {
	switch hookType {
	case PreDownload:
		return `// Pre-download hook
// This script runs before each file is downloaded
// Available variables:
// - uri: string - the URI about to be downloaded
// - downloadDir: string - the root directory files are mirrored into
// - vars: map - custom variables passed to the hook

// Example: reject URIs from an unwanted host
/*
text := import("text")
if text.contains(uri, "ads.example.com") {
    err := "refusing to download from ad host"
}
*/`

	case PostDownload:
		return `// Post-download hook
// This script runs after each file lands on disk
// Available variables: same as pre-download, plus
// - localPath: string - the file's location on disk

// Example: note the file in a sidecar log
/*
fmt := import("fmt")
fmt.println("downloaded " + uri + " -> " + localPath)
*/`

	case PreRun:
		return `// Pre-run hook
// This script runs once before the first download of a run
// Available variables:
// - downloadDir: string - the root directory files are mirrored into
// - vars: map - custom variables passed to the hook`

	case PostRun:
		return `// Post-run hook
// This script runs once after the last download of a run
// Available variables: same as pre-run hook`

	default:
		return "// Unknown hook type: " + string(hookType)
	}
}
