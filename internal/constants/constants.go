// Package constants provides a centralized location for configuration
// values and magic numbers used throughout the repowatch application.
package constants

import "time"

// GitHub API paging constants
const (
	// PerPage is the page size requested from the issues list endpoint.
	PerPage = 100

	// MaxPages caps pagination as a guard against runaway loops on
	// misbehaving mirrors. 200 pages of 100 covers 20k records per repo.
	MaxPages = 200

	// RateLimitLowWatermark is the threshold below which rate limit
	// warnings are logged.
	RateLimitLowWatermark = 100
)

// Fetch retry constants
const (
	// FetchMaxRetries bounds transient-error retries per page request.
	FetchMaxRetries = 3

	// FetchRetryInterval seeds the exponential backoff between page
	// retries.
	FetchRetryInterval = 500 * time.Millisecond

	// FetchConcurrency bounds parallel repository fetches.
	FetchConcurrency = 4
)

// Notification constants
const (
	// NotifyTimeout bounds a single Telegram send.
	NotifyTimeout = 10 * time.Second

	// StaleDetailLimit is the number of stalest PRs listed on a
	// stale-PR alert.
	StaleDetailLimit = 3
)

// Store constants
const (
	// SnapshotKeep is how many snapshots are retained per repository;
	// older ones are pruned on save.
	SnapshotKeep = 5
)

// Display constants
const (
	// WatchRefreshInterval is the default refresh interval for the
	// watch dashboard.
	WatchRefreshInterval = 15 * time.Minute

	// TruncationSuffix is appended when table cells are cut to width.
	TruncationSuffix = "..."
)
