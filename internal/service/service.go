// Package service orchestrates data flow between the GitHub API, the
// snapshot store, and the check runner.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spiffcs/repowatch/config"
	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/ghclient"
	"github.com/spiffcs/repowatch/internal/log"
	"github.com/spiffcs/repowatch/internal/model"
	"github.com/spiffcs/repowatch/internal/store"
	"github.com/spiffcs/repowatch/internal/watch"
)

// ErrNoStore is returned by operations that need the snapshot store
// when the service was built without one.
var ErrNoStore = errors.New("no store configured")

// Service combines fetching, persistence, and check orchestration.
type Service struct {
	lister ghclient.IssueLister
	store  *store.Store
}

// New creates a Service. A nil store disables persistence: fetches
// still work, checks against stored snapshots do not.
func New(lister ghclient.IssueLister, st *store.Store) *Service {
	return &Service{lister: lister, store: st}
}

// FetchResult contains the outcome of one repository fetch.
type FetchResult struct {
	Repo      string         `json:"repo"`
	Records   []model.Record `json:"records"`
	Snapshot  store.Snapshot `json:"-"`
	Malformed int            `json:"malformed"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// FetchRepo fetches and normalizes everything the issues endpoint
// returns for one repo, then saves a snapshot when a store is
// configured. Malformed items are logged and skipped, never fatal.
func (s *Service) FetchRepo(ctx context.Context, repo string) (FetchResult, error) {
	issues, err := s.lister.FetchAllIssues(ctx, repo)
	if err != nil {
		return FetchResult{}, err
	}

	records, malformed := ghclient.Normalize(issues, repo)
	for _, err := range malformed {
		log.Warn("skipping malformed item", "repo", repo, "error", err)
	}

	result := FetchResult{
		Repo:      repo,
		Records:   records,
		Malformed: len(malformed),
		FetchedAt: time.Now().UTC(),
	}

	if s.store != nil {
		snap, err := s.store.SaveSnapshot(ctx, repo, result.FetchedAt, records)
		if err != nil {
			return result, fmt.Errorf("saving snapshot for %s: %w", repo, err)
		}
		result.Snapshot = snap
	}

	log.Info("fetched repository", "repo", repo, "records", len(records), "malformed", len(malformed))
	return result, nil
}

// FetchAll fetches several repos with bounded concurrency. It returns
// the successful results in input order; failures are logged, and the
// joined error covers every repo that failed.
func (s *Service) FetchAll(ctx context.Context, repos []string) ([]FetchResult, error) {
	results := make([]FetchResult, len(repos))
	errs := make([]error, len(repos))

	var g errgroup.Group
	g.SetLimit(constants.FetchConcurrency)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			result, err := s.FetchRepo(ctx, repo)
			if err != nil {
				log.Error("fetch failed", "repo", repo, "error", err)
				errs[i] = fmt.Errorf("%s: %w", repo, err)
				return errs[i]
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ok := results[:0]
		for _, r := range results {
			if r.Repo != "" {
				ok = append(ok, r)
			}
		}
		return ok, errors.Join(errs...)
	}
	return results, nil
}

// CheckRepo evaluates the latest stored snapshot and delivers any
// alerts through the runner, then records the run.
func (s *Service) CheckRepo(ctx context.Context, repo string, runner watch.Runner, now time.Time) (watch.Report, error) {
	if s.store == nil {
		return watch.Report{}, ErrNoStore
	}

	snap, records, err := s.store.Latest(ctx, repo)
	if err != nil {
		return watch.Report{}, err
	}
	log.Debug("loaded snapshot", "repo", repo, "fetched_at", snap.FetchedAt, "records", len(records))

	report, err := runner.Run(ctx, repo, records, now)
	if err != nil {
		return report, err
	}
	s.recordRun(ctx, report)
	return report, nil
}

// RunRepo fetches fresh data and immediately checks it, recording the
// run. This is the fetch-then-alert path a scheduler invokes.
func (s *Service) RunRepo(ctx context.Context, repo string, runner watch.Runner, now time.Time) (watch.Report, error) {
	result, err := s.FetchRepo(ctx, repo)
	if err != nil {
		return watch.Report{}, err
	}

	report, err := runner.Run(ctx, repo, result.Records, now)
	if err != nil {
		return report, err
	}
	s.recordRun(ctx, report)
	return report, nil
}

// recordRun persists a run report. Failures are logged, not fatal: the
// alerts already went out.
func (s *Service) recordRun(ctx context.Context, report watch.Report) {
	if s.store == nil {
		return
	}
	if err := s.store.RecordRun(ctx, report); err != nil {
		log.Debug("failed to record run", "repo", report.Repo, "error", err)
	}
}

// RepoStatus is the read-only view of one repo's stored state.
type RepoStatus struct {
	Repo        string        `json:"repo"`
	HasSnapshot bool          `json:"hasSnapshot"`
	FetchedAt   time.Time     `json:"fetchedAt,omitzero"`
	RecordCount int           `json:"recordCount"`
	Metrics     watch.Metrics `json:"metrics"`
	Alerts      []model.Alert `json:"alerts,omitempty"`
	LastRun     *store.Run    `json:"lastRun,omitempty"`
}

// Status builds the status view for one repo from its latest snapshot.
// A repo with no snapshot yet gets HasSnapshot false, not an error.
func (s *Service) Status(ctx context.Context, repo string, thresholds config.Thresholds, now time.Time) (RepoStatus, error) {
	status := RepoStatus{Repo: repo}
	if s.store == nil {
		return status, ErrNoStore
	}

	snap, records, err := s.store.Latest(ctx, repo)
	if errors.Is(err, store.ErrNoSnapshot) {
		return status, nil
	}
	if err != nil {
		return status, err
	}

	status.HasSnapshot = true
	status.FetchedAt = snap.FetchedAt
	status.RecordCount = snap.RecordCount
	status.Metrics = watch.Compute(records, thresholds, now)
	status.Alerts = watch.Evaluate(records, thresholds, now)

	run, err := s.store.LastRun(ctx, repo)
	switch {
	case err == nil:
		status.LastRun = &run
	case !errors.Is(err, store.ErrNoRun):
		return status, err
	}

	return status, nil
}

// StatusAll builds status views for several repos in input order.
func (s *Service) StatusAll(ctx context.Context, repos []string, thresholds config.Thresholds, now time.Time) ([]RepoStatus, error) {
	statuses := make([]RepoStatus, 0, len(repos))
	for _, repo := range repos {
		status, err := s.Status(ctx, repo, thresholds, now)
		if err != nil {
			return statuses, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}
