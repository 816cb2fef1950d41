// Package ghclient provides the GitHub API client used for ingest.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/spiffcs/repowatch/internal/constants"
	"github.com/spiffcs/repowatch/internal/log"
)

// rateLimitTransport wraps an http.RoundTripper to handle GitHub rate limits
type rateLimitTransport struct {
	base http.RoundTripper
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Check if we're already rate limited before making the request
	if globalRateLimitState.IsLimited() {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// Parse and update rate limit state from response headers
	remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		globalRateLimitState.Update(remaining, limit, resetAt)
	}

	// Log warning if rate limit is low
	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// Handle rate limit responses (403 with rate limit exceeded or 429)
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			globalRateLimitState.SetLimited(true, resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, err
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if lim, err := strconv.Atoi(limitStr); err == nil {
			limit = lim
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return remaining, limit, resetAt
}

// Client wraps the GitHub API client.
type Client struct {
	client *gh.Client
}

// NewClient creates a GitHub client. An empty token falls back to the
// GITHUB_TOKEN environment variable; with no token at all the client runs
// unauthenticated, which GitHub caps at 60 requests per hour.
func NewClient(ctx context.Context, token string) *Client {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	var hc *http.Client
	if token == "" {
		log.Warn("GITHUB_TOKEN not set, using unauthenticated API access (60 requests/hour)")
		hc = &http.Client{
			Transport: &rateLimitTransport{base: http.DefaultTransport},
		}
	} else {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(ctx, ts)

		// Wrap transport with rate limit handling
		hc.Transport = &rateLimitTransport{
			base: hc.Transport,
		}
	}

	return &Client{client: gh.NewClient(hc)}
}

// WithBaseURL points the client at a different API endpoint. Used by
// tests and GitHub Enterprise installs.
func (c *Client) WithBaseURL(rawURL string) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(rawURL, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", rawURL, err)
	}
	c.client.BaseURL = u
	return c, nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.client.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// FetchAllIssues lists every issue and pull request for repo (owner/name
// form), paginating until the API reports no next page. The issues list
// endpoint returns both kinds; classification happens during normalize.
func (c *Client) FetchAllIssues(ctx context.Context, repo string) ([]*gh.Issue, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid repository %q: want owner/name", repo)
	}

	opts := &gh.IssueListByRepoOptions{
		State: "all",
		ListOptions: gh.ListOptions{
			PerPage: constants.PerPage,
		},
	}

	var all []*gh.Issue

	for page := 1; ; page++ {
		if page > constants.MaxPages {
			return nil, fmt.Errorf("pagination did not terminate for %s after %d pages", repo, constants.MaxPages)
		}

		issues, resp, err := c.listIssuePage(ctx, owner, name, opts)
		if err != nil {
			log.ProgressClear()
			return nil, fmt.Errorf("failed to list issues for %s: %w", repo, err)
		}

		all = append(all, issues...)
		log.Progress("fetching %s: page %d, %d records", repo, page, len(all))

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	log.ProgressDone()

	return all, nil
}

// listIssuePage fetches a single page, retrying transient failures with
// exponential backoff. Rate limit exhaustion and client errors are not
// retried.
func (c *Client) listIssuePage(ctx context.Context, owner, name string, opts *gh.IssueListByRepoOptions) ([]*gh.Issue, *gh.Response, error) {
	var (
		issues []*gh.Issue
		resp   *gh.Response
	)

	operation := func() error {
		var err error
		issues, resp, err = c.client.Issues.ListByRepo(ctx, owner, name, opts)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrRateLimited) || !isTransient(resp, err) {
			return backoff.Permanent(err)
		}
		log.Debug("retrying page fetch", "repo", owner+"/"+name, "page", opts.Page, "error", err)
		return err
	}

	policy := backoff.WithContext(newRetryPolicy(), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, nil, err
	}

	return issues, resp, nil
}

func newRetryPolicy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = constants.FetchRetryInterval
	return backoff.WithMaxRetries(b, constants.FetchMaxRetries)
}

// isTransient reports whether a page fetch failure is worth retrying:
// server-side errors and network failures are, everything else is not.
func isTransient(resp *gh.Response, err error) bool {
	if resp != nil {
		return resp.StatusCode >= http.StatusInternalServerError
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode >= http.StatusInternalServerError
	}

	// No HTTP response at all: connection-level failure.
	return true
}
