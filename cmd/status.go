package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/output"
)

// NewCmdStatus creates the status command.
func NewCmdStatus(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [owner/name ...]",
		Short: "Show per-repository metrics from stored snapshots (same as root repowatch)",
		Long: `Shows the latest stored metrics for each repository: open issues,
open PRs, stale PRs, last activity, snapshot age, and the last check run.
Reads only the local store; nothing is fetched and nothing is sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, args, opts)
		},
	}

	addStatusFlags(cmd, opts)
	return cmd
}

// addStatusFlags adds the status-specific flags to a command.
func addStatusFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runStatus(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	svc, st, closeStore, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Repos to show: arguments, then config, then whatever the store holds
	repos := args
	if len(repos) == 0 {
		repos = cfg.Repos
	}
	if len(repos) == 0 {
		repos, err = st.Repos(ctx)
		if err != nil {
			return err
		}
	}
	if len(repos) == 0 {
		fmt.Println("No repositories configured and no snapshots stored.")
		fmt.Println("Run 'repowatch fetch owner/name' to take a first snapshot.")
		return nil
	}

	thresholds := resolveThresholds(cfg, opts)
	statuses, err := svc.StatusAll(ctx, repos, thresholds, time.Now().UTC())
	if err != nil {
		return err
	}

	formatter := output.NewFormatter(output.Format(resolveFormat(cfg, opts)), thresholds)
	return formatter.FormatStatuses(statuses, os.Stdout)
}
