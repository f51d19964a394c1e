package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/siphon/internal/logger"
	"github.com/glorpus-work/siphon/pkg/archive"
	"github.com/glorpus-work/siphon/pkg/config"
	"github.com/glorpus-work/siphon/pkg/download"
	"github.com/glorpus-work/siphon/pkg/hook"
	"github.com/glorpus-work/siphon/pkg/httpclient"
	"github.com/glorpus-work/siphon/pkg/orchestrator"
	"github.com/glorpus-work/siphon/pkg/pathmap"
)

// NewFetchCmd creates the fetch command.
func NewFetchCmd() *cobra.Command {
	var (
		listPath string
		dir      string
		workers  int
		extract  bool
		hooksDir string
	)

	cmd := &cobra.Command{
		Use:   "fetch [URI...]",
		Short: "Download URIs into the local mirror",
		Long: `Download one or more URIs into the local mirror directory.

Each URI is mapped to a deterministic path under the mirror root, so
fetching the same URI twice does not download it again. URIs can be given
as arguments or read from a list file with --list.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), args, listPath, dir, workers, extract, hooksDir)
		},
	}

	cmd.Flags().StringVarP(&listPath, "list", "l", "", "file listing URIs to fetch (YAML or one per line)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "", "mirror directory (overrides config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "number of concurrent download workers (overrides config)")
	cmd.Flags().BoolVarP(&extract, "extract", "x", false, "extract downloaded archives next to the archive file")
	cmd.Flags().StringVar(&hooksDir, "hooks-dir", "", "directory to load hook scripts from (overrides config)")

	return cmd
}

func runFetch(ctx context.Context, uris []string, listPath, dir string, workers int, extract bool, hooksDir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Flag overrides
	if dir != "" {
		cfg.Settings.DownloadDir = dir
	}
	if workers > 0 {
		cfg.Settings.Workers = workers
	}
	if hooksDir != "" {
		cfg.Settings.HooksDir = hooksDir
	}

	if listPath != "" {
		list, err := config.LoadURIList(listPath)
		if err != nil {
			return err
		}
		uris = append(uris, list.URIs...)
		for k, v := range list.Headers {
			if cfg.Settings.Headers == nil {
				cfg.Settings.Headers = make(map[string]string)
			}
			cfg.Settings.Headers[k] = v
		}
	}

	if len(uris) == 0 {
		return fmt.Errorf("no URIs to fetch (pass them as arguments or via --list)")
	}

	hookMgr := hook.NewHookManager()
	if cfg.Settings.HooksDir != "" {
		if err := hook.LoadHooksFromDir(hookMgr, cfg.Settings.HooksDir); err != nil {
			return err
		}
	}

	runCtx := hook.HookContext{DownloadDir: cfg.Settings.DownloadDir}
	if err := hookMgr.Execute(hook.PreRun, runCtx); err != nil {
		return err
	}

	// Pre-download hooks can veto individual URIs without stopping the run.
	var hookErr error
	if hookMgr.HasHook(hook.PreDownload) {
		kept := make([]string, 0, len(uris))
		for _, uri := range uris {
			hctx := runCtx
			hctx.URI = uri
			if err := hookMgr.Execute(hook.PreDownload, hctx); err != nil {
				logger.Warnf("pre-download hook rejected %s: %v", uri, err)
				if hookErr == nil {
					hookErr = err
				}
				continue
			}
			kept = append(kept, uri)
		}
		uris = kept
	}

	results, fetchErr := fetchAll(ctx, cfg, uris)

	for uri, path := range results {
		hctx := runCtx
		hctx.URI = uri
		hctx.LocalPath = path
		if err := hookMgr.Execute(hook.PostDownload, hctx); err != nil {
			logger.Warnf("post-download hook failed for %s: %v", uri, err)
			if hookErr == nil {
				hookErr = err
			}
		}

		if extract && isArchivePath(path) {
			destDir, err := archive.NewManager().ExtractSibling(ctx, path)
			if err != nil {
				return fmt.Errorf("failed to extract %s: %w", path, err)
			}
			logger.Info("Extracted archive", logger.Fields{"archive": path, "into": destDir})
		}
	}

	if err := hookMgr.Execute(hook.PostRun, runCtx); err != nil && hookErr == nil {
		hookErr = err
	}

	if fetchErr != nil {
		return fmt.Errorf("downloaded %d of %d URIs: %w", len(results), len(uris), fetchErr)
	}
	if hookErr != nil {
		return hookErr
	}

	logger.Success("Downloads complete", logger.Fields{
		"uris": len(results),
		"dir":  cfg.Settings.DownloadDir,
	})
	return nil
}

// fetchAll wires up the transport, the per-worker coordinators and the
// orchestrator, then downloads everything.
func fetchAll(ctx context.Context, cfg *config.Config, uris []string) (map[string]string, error) {
	client := httpclient.New(cfg.HTTPConfig())
	mapper := pathmap.NewWithReplacement(cfg.Settings.DownloadDir, cfg.Settings.PathReplacement)

	downloaders := make([]orchestrator.Downloader, cfg.Settings.Workers)
	for i := range downloaders {
		downloaders[i] = download.NewCoordinatorWithMapper(mapper, 1, client)
	}

	orch := orchestrator.New(mapper, downloaders, orchestrator.Hooks{
		OnEvent: func(e orchestrator.Event) {
			switch e.Phase {
			case "downloading":
				logger.Debug("Downloading", logger.Fields{"uri": e.URI})
			case "done":
				logger.Info("Downloaded", logger.Fields{"uri": e.URI, "path": e.Msg})
			case "error":
				logger.Error("Download failed", logger.Fields{"uri": e.URI, "error": e.Msg})
			}
		},
	})

	return orch.FetchAll(ctx, uris)
}

// isArchivePath reports whether the file name looks like a supported archive.
func isArchivePath(path string) bool {
	for _, suffix := range []string{".tar.gz", ".tgz", ".tar", ".zip"} {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	return false
}
