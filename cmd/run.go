package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/export"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/output"
	"github.com/spiffcs/repowatch/internal/tui"
	"github.com/spiffcs/repowatch/internal/watch"
)

// NewCmdRun creates the run command.
func NewCmdRun(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [owner/name ...]",
		Short: "Fetch, evaluate, and alert in one pass",
		Long: `Fetches fresh data for the given repositories, evaluates the
thresholds, and sends one Telegram message per breach. This is the
command a cron job or scheduler should invoke.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args, opts)
		},
	}

	addCheckFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.CSVPath, "csv", "", "Also export fetched records to a CSV file")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")

	return cmd
}

func runRun(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()

	// Dry-run prints messages to stdout, which the TUI would clobber
	if opts.DryRun {
		off := false
		opts.TUI = &off
	}

	rt, cleanup, err := setupRuntime(opts, tui.RunTasks())
	if err != nil {
		return err
	}
	defer cleanup()
	rt.startTUI()

	cfg, err := loadConfig()
	if err != nil {
		rt.close()
		return err
	}

	repos, err := resolveRepos(cfg, args)
	if err != nil {
		rt.close()
		return err
	}

	thresholds := resolveThresholds(cfg, opts)
	if err := thresholds.Validate(); err != nil {
		rt.close()
		return err
	}

	notify, err := newNotify(opts)
	if err != nil {
		rt.close()
		return err
	}
	runner := watch.Runner{Thresholds: thresholds, Notify: notify}

	svc, st, closeStore, err := openService(ctx, cfg)
	if err != nil {
		rt.close()
		return err
	}
	defer closeStore()

	now := time.Now().UTC()
	var reports []watch.Report

	results, fetchErr := fetchRepos(ctx, svc, repos, rt)
	if len(results) == 0 && fetchErr != nil {
		rt.close()
		return fetchErr
	}

	if opts.CSVPath != "" {
		var records []model.Record
		for _, r := range results {
			records = append(records, r.Records...)
		}
		if err := export.WriteCSVFile(opts.CSVPath, records); err != nil {
			rt.close()
			return fmt.Errorf("exporting CSV: %w", err)
		}
	}

	rt.sendEvent(tui.TaskCheck, tui.StatusRunning,
		tui.WithMessage(fmt.Sprintf("%d repositories", len(results))))

	var attempted, delivered int
	for _, result := range results {
		report, err := runner.Run(ctx, result.Repo, result.Records, now)
		if err != nil {
			rt.sendEvent(tui.TaskCheck, tui.StatusError, tui.WithError(err))
			rt.close()
			return err
		}
		if err := st.RecordRun(ctx, report); err != nil {
			log.Debug("failed to record run", "repo", report.Repo, "error", err)
		}
		reports = append(reports, report)
		attempted += report.Attempted
		delivered += report.Delivered
	}

	rt.sendEvent(tui.TaskCheck, tui.StatusComplete,
		tui.WithMessage(fmt.Sprintf("%d alerts, %d delivered", attempted, delivered)))
	rt.close()

	formatter := output.NewFormatter(output.Format(resolveFormat(cfg, opts)), thresholds)
	for _, report := range reports {
		if err := formatter.FormatReport(report, os.Stdout); err != nil {
			return err
		}
	}

	if attempted > 0 && !opts.DryRun {
		fmt.Printf("\nDelivered %d of %d alerts.\n", delivered, attempted)
	}
	return fetchErr
}
