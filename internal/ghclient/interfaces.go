package ghclient

import (
	"context"

	gh "github.com/google/go-github/v57/github"
)

// IssueLister defines the interface for fetching raw tracker items.
// This enables mocking the GitHub API in unit tests.
type IssueLister interface {
	FetchAllIssues(ctx context.Context, repo string) ([]*gh.Issue, error)
}

// Ensure Client implements IssueLister.
var _ IssueLister = (*Client)(nil)
