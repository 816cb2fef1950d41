package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/format"
	"github.com/spiffcs/repowatch/internal/store"
)

// NewCmdStore creates the store command with subcommands.
func NewCmdStore() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage the snapshot store",
	}

	cmd.AddCommand(newCmdStorePath())
	cmd.AddCommand(newCmdStoreClear())

	return cmd
}

// newCmdStorePath creates the store path subcommand.
func newCmdStorePath() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the snapshot database location",
		RunE:  runStorePath,
	}
}

// newCmdStoreClear creates the store clear subcommand.
func newCmdStoreClear() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [owner/name]",
		Short: "Delete stored snapshots and run history",
		Long: `Deletes stored snapshots and run history for one repository, or for
every repository when none is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runStoreClear,
	}
}

func runStorePath(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := cfg.GetStorePath()
	fmt.Println(path)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Println("(does not exist yet)")
		return nil
	}
	fmt.Printf("(%d bytes, modified %s ago)\n", info.Size(), format.Age(time.Since(info.ModTime())))
	return nil
}

func runStoreClear(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.GetStorePath())
	if err != nil {
		return err
	}
	defer st.Close()

	if len(args) == 0 {
		if err := st.Clear(ctx, ""); err != nil {
			return fmt.Errorf("clearing store: %w", err)
		}
		fmt.Println("Store cleared.")
		return nil
	}

	repo := args[0]
	if err := st.Clear(ctx, repo); err != nil {
		return fmt.Errorf("clearing %s: %w", repo, err)
	}
	fmt.Printf("Cleared %s.\n", repo)
	return nil
}
