package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/output"
	"github.com/spiffcs/repowatch/internal/store"
	"github.com/spiffcs/repowatch/internal/watch"
)

// NewCmdCheck creates the check command.
func NewCmdCheck(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [owner/name ...]",
		Short: "Evaluate stored snapshots and send alerts",
		Long: `Evaluates the latest stored snapshot of each repository against the
configured thresholds and sends one Telegram message per breached
threshold. Run 'repowatch fetch' first to take a snapshot.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
	}

	addCheckFlags(cmd, opts)
	return cmd
}

// addCheckFlags adds the evaluation flags shared by check and run.
func addCheckFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, markdown)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print rendered alerts instead of sending them")
	cmd.Flags().IntVar(&opts.MaxIssues, "max-issues", 0, "Override the open-issue threshold")
	cmd.Flags().IntVar(&opts.MaxPRs, "max-prs", 0, "Override the open-PR threshold")
	cmd.Flags().IntVar(&opts.StaleDays, "stale-days", 0, "Override the stale-PR age threshold (days)")
	cmd.Flags().IntVar(&opts.InactiveDays, "inactive-days", 0, "Override the inactivity threshold (days)")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runCheck(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()
	log.Initialize(opts.Verbosity, os.Stderr)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	repos, err := resolveRepos(cfg, args)
	if err != nil {
		return err
	}

	thresholds := resolveThresholds(cfg, opts)
	if err := thresholds.Validate(); err != nil {
		return err
	}

	notify, err := newNotify(opts)
	if err != nil {
		return err
	}
	runner := watch.Runner{Thresholds: thresholds, Notify: notify}

	svc, _, closeStore, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	formatter := output.NewFormatter(output.Format(resolveFormat(cfg, opts)), thresholds)
	now := time.Now().UTC()

	var attempted, delivered, missing int
	for _, repo := range repos {
		report, err := svc.CheckRepo(ctx, repo, runner, now)
		if errors.Is(err, store.ErrNoSnapshot) {
			log.Warn("no snapshot stored, run 'repowatch fetch' first", "repo", repo)
			missing++
			continue
		}
		if err != nil {
			return fmt.Errorf("checking %s: %w", repo, err)
		}

		if err := formatter.FormatReport(report, os.Stdout); err != nil {
			return err
		}
		attempted += report.Attempted
		delivered += report.Delivered
	}

	if missing == len(repos) {
		return fmt.Errorf("no snapshots stored for any requested repository")
	}
	if attempted > 0 && !opts.DryRun {
		fmt.Printf("\nDelivered %d of %d alerts.\n", delivered, attempted)
	}
	return nil
}
