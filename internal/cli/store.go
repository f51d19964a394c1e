package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glorpus-work/siphon/internal/logger"
	"github.com/glorpus-work/siphon/pkg/store"
)

// NewStoreCmd creates the store command with subcommands.
func NewStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the local mirror store",
		Long:  "Inspect and clean the directory downloaded files are mirrored into",
	}

	cmd.AddCommand(
		newStoreInfoCmd(),
		newStoreCleanCmd(),
		newStoreDirCmd(),
	)

	return cmd
}

func newStoreInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show store information",
		Long:  "Display the size and file count of the mirror store, per host",
		RunE:  runStoreInfo,
	}
}

func newStoreCleanCmd() *cobra.Command {
	var host string

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove mirrored files",
		Long:  "Remove mirrored files from the store, either everything or a single host directory",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runStoreClean(host)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "only clean the directory for this sanitized host name")

	return cmd
}

func newStoreDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Print the store directory",
		RunE:  runStoreDir,
	}
}

func storeOperation() (*store.StoreOperation, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStoreOperation(store.NewManager(cfg.Settings.DownloadDir)), nil
}

func runStoreInfo(*cobra.Command, []string) error {
	op, err := storeOperation()
	if err != nil {
		return err
	}

	msg, err := op.GetInfo()
	if err != nil {
		return err
	}

	fmt.Println(msg)
	return nil
}

func runStoreClean(host string) error {
	op, err := storeOperation()
	if err != nil {
		return err
	}

	msg, err := op.Clean(host == "", host)
	if err != nil {
		return err
	}

	logger.Success(msg)
	return nil
}

func runStoreDir(*cobra.Command, []string) error {
	op, err := storeOperation()
	if err != nil {
		return err
	}

	fmt.Println(op.GetDirectory())
	return nil
}
