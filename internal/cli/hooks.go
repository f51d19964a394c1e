package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/siphon/internal/logger"
	"github.com/glorpus-work/siphon/pkg/fsutil"
	"github.com/glorpus-work/siphon/pkg/hook"
)

// NewHooksCmd creates the hooks command with subcommands.
func NewHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage hook scripts",
		Long:  "Work with the Tengo hook scripts that run around downloads",
	}

	cmd.AddCommand(newHooksTemplateCmd())

	return cmd
}

func newHooksTemplateCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "template TYPE",
		Short: "Print a hook script template",
		Long: `Print a template for a hook script of the given type
(pre-download, post-download, pre-run or post-run). With --write the
template is saved into the configured hooks directory instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return runHooksTemplate(hook.HookType(args[0]), write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "write the template into the hooks directory")

	return cmd
}

func runHooksTemplate(hookType hook.HookType, write bool) error {
	switch hookType {
	case hook.PreDownload, hook.PostDownload, hook.PreRun, hook.PostRun:
	default:
		return fmt.Errorf("unknown hook type: %s", hookType)
	}

	template := hook.HookTemplate(hookType)

	if !write {
		fmt.Println(template)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Settings.HooksDir == "" {
		return fmt.Errorf("no hooks directory configured (set hooks_dir)")
	}

	if err := fsutil.EnsureDir(cfg.Settings.HooksDir); err != nil {
		return fmt.Errorf("failed to create hooks directory: %w", err)
	}

	path := filepath.Join(cfg.Settings.HooksDir, string(hookType)+".tengo")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("hook script already exists at %s", path)
	}

	if err := os.WriteFile(path, []byte(template+"\n"), fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to write hook template: %w", err)
	}

	logger.Success("Hook template created", logger.Fields{"path": path})
	return nil
}
