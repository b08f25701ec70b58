package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartdeck/internal/config"
	"github.com/matzehuels/chartdeck/pkg/store"
)

// storeCommand creates the store management command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the local session store",
	}

	cmd.AddCommand(c.storeClearCommand())
	cmd.AddCommand(c.storePathCommand())

	return cmd
}

// storeClearCommand creates the "store clear" subcommand.
func (c *CLI) storeClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all sessions and uploaded datasets in the file store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if cfg.Store.Backend != config.BackendFile {
				printWarning("The %s backend is not cleared from the CLI", cfg.Store.Backend)
				return nil
			}
			dir, err := cfg.StoreDir()
			if err != nil {
				return fmt.Errorf("get store dir: %w", err)
			}

			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Store is empty")
				return nil
			}

			fs, err := store.NewFile(dir)
			if err != nil {
				return err
			}
			count, err := fs.Len()
			if err != nil {
				return fmt.Errorf("count entries: %w", err)
			}
			if err := fs.Clear(); err != nil {
				return fmt.Errorf("clear store: %w", err)
			}

			printSuccess("Cleared %d stored entries", count)
			printDetail("Directory: %s", dir)
			return nil
		},
	}
}

// storePathCommand creates the "store path" subcommand.
func (c *CLI) storePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file store directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			dir, err := cfg.StoreDir()
			if err != nil {
				return fmt.Errorf("get store dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
