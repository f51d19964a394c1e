package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/siphon/pkg/pathmap"
)

// NewResolveCmd creates the resolve command.
func NewResolveCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "resolve URI...",
		Short: "Show the local path a URI maps to",
		Long: `Print the local mirror path each URI would be downloaded to,
without downloading anything.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runResolve(args, dir)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "mirror directory (overrides config)")

	return cmd
}

func runResolve(uris []string, dir string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir != "" {
		cfg.Settings.DownloadDir = dir
	}

	mapper := pathmap.NewWithReplacement(cfg.Settings.DownloadDir, cfg.Settings.PathReplacement)

	for _, uri := range uris {
		path, err := mapper.Map(uri)
		if err != nil {
			return fmt.Errorf("cannot resolve %s: %w", uri, err)
		}
		fmt.Printf("%s\t%s\n", uri, path)
	}

	return nil
}
