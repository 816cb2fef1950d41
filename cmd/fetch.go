package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/export"
	"github.com/spiffcs/repowatch/internal/ghclient"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/service"
	"github.com/spiffcs/repowatch/internal/tui"
)

// NewCmdFetch creates the fetch command.
func NewCmdFetch(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch [owner/name ...]",
		Short: "Fetch and snapshot repository issues and pull requests",
		Long: `Fetches every issue and pull request for the given repositories
(or the configured repos list), normalizes them, and saves a snapshot to
the local store. No thresholds are evaluated and no alerts are sent.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args, opts)
		},
	}

	cmd.Flags().StringVar(&opts.CSVPath, "csv", "", "Also export fetched records to a CSV file")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")

	return cmd
}

func runFetch(cmd *cobra.Command, args []string, opts *Options) error {
	ctx := cmd.Context()

	rt, cleanup, err := setupRuntime(opts, tui.FetchTasks())
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

	svc, _, closeStore, err := openService(ctx, cfg)
	if err != nil {
		rt.close()
		return err
	}
	defer closeStore()

	results, fetchErr := fetchRepos(ctx, svc, repos, rt)
	rt.close()

	if opts.CSVPath != "" && len(results) > 0 {
		var records []model.Record
		for _, r := range results {
			records = append(records, r.Records...)
		}
		if err := export.WriteCSVFile(opts.CSVPath, records); err != nil {
			return fmt.Errorf("exporting CSV: %w", err)
		}
		fmt.Printf("Exported %d records to %s\n", len(records), opts.CSVPath)
	}

	for _, r := range results {
		line := fmt.Sprintf("Fetched %s: %d records", r.Repo, len(r.Records))
		if r.Malformed > 0 {
			line += fmt.Sprintf(" (%d malformed items skipped)", r.Malformed)
		}
		fmt.Println(line)
	}

	return fetchErr
}

// fetchRepos runs the fan-out fetch with TUI progress and rate limit
// reporting. Partial failure returns the successful results alongside the
// joined error.
func fetchRepos(ctx context.Context, svc *service.Service, repos []string, rt *taskRuntime) ([]service.FetchResult, error) {
	rt.sendEvent(tui.TaskFetch, tui.StatusRunning,
		tui.WithMessage(fmt.Sprintf("%d repositories", len(repos))))

	results, err := svc.FetchAll(ctx, repos)

	if remaining, limit, resetAt, limited := ghclient.GetRateLimitStatus(); limited || (limit > 0 && remaining < constants.RateLimitLowWatermark) {
		if rt.events != nil {
			tui.SendEvent(rt.events, tui.RateLimitEvent{
				Remaining: remaining,
				Low:       true,
				ResetAt:   resetAt,
			})
		}
		log.Warn("GitHub API quota low", "remaining", remaining, "limit", limit, "reset", resetAt)
	}

	if err != nil {
		if len(results) == 0 {
			rt.sendEvent(tui.TaskFetch, tui.StatusError, tui.WithError(err))
			return nil, err
		}
		rt.sendEvent(tui.TaskFetch, tui.StatusComplete,
			tui.WithMessage(fmt.Sprintf("%d/%d repositories (some failed)", len(results), len(repos))))
		return results, err
	}

	total := 0
	for _, r := range results {
		total += len(r.Records)
	}
	rt.sendEvent(tui.TaskFetch, tui.StatusComplete,
		tui.WithMessage(fmt.Sprintf("%d repositories, %d records", len(results), total)))

	return results, nil
}
