package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/duration"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/tui"
)

// NewCmdWatch creates the watch command.
func NewCmdWatch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [owner/name ...]",
		Short: "Live dashboard of repository metrics",
		Long: `Opens a full-screen dashboard that re-fetches the watched
repositories on an interval and displays their metrics and would-be
alerts. The dashboard never sends Telegram messages; use 'repowatch run'
for that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Interval, "interval", "i", "", "Refresh interval (e.g., 90s, 15m, 1h, 1d)")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()

	// The dashboard owns the terminal; logs would corrupt it
	log.Initialize(opts.Verbosity, io.Discard)

	if !tui.ShouldUseTUI() {
		return fmt.Errorf("watch needs an interactive terminal; use 'repowatch status' when piping output")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repos, err := resolveRepos(cfg, args)
	if err != nil {
		return err
	}

	interval, err := cfg.GetWatchInterval()
	if err != nil {
		return err
	}
	if opts.Interval != "" {
		interval, err = duration.Parse(opts.Interval)
		if err != nil {
			return fmt.Errorf("invalid interval: %w", err)
		}
	}

	thresholds := resolveThresholds(cfg, opts)
	if err := thresholds.Validate(); err != nil {
		return err
	}

	svc, _, closeStore, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	refresh := func() ([]service.RepoStatus, error) {
		if _, err := svc.FetchAll(ctx, repos); err != nil {
			// Stale data beats an empty dashboard; show what the
			// store has and surface the error in the footer
			statuses, statusErr := svc.StatusAll(ctx, repos, thresholds, time.Now().UTC())
			if statusErr != nil {
				return nil, statusErr
			}
			return statuses, err
		}
		return svc.StatusAll(ctx, repos, thresholds, time.Now().UTC())
	}

	return tui.RunDashboard(refresh, thresholds, interval)
}
