package ghclient

import (
	"errors"
	"fmt"

	gh "github.com/google/go-github/v57/github"

	"github.com/spiffcs/repowatch/internal/model"
)

// ErrMalformedItem marks a tracker item missing a required field. The
// item is skipped and reported; the rest of the batch continues.
var ErrMalformedItem = errors.New("malformed tracker item")

// Normalize converts raw issue payloads into uniform records, preserving
// API order. Each malformed item contributes one error to the second
// return value; the successfully normalized records are always returned.
func Normalize(items []*gh.Issue, repo string) ([]model.Record, []error) {
	records := make([]model.Record, 0, len(items))
	var errs []error

	for i, item := range items {
		rec, err := normalizeItem(item, repo, i)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}

	return records, errs
}

func normalizeItem(item *gh.Issue, repo string, idx int) (model.Record, error) {
	switch {
	case item == nil:
		return model.Record{}, fmt.Errorf("%w: item %d is empty", ErrMalformedItem, idx)
	case item.ID == nil:
		return model.Record{}, fmt.Errorf("%w: item %d missing id", ErrMalformedItem, idx)
	case item.Number == nil:
		return model.Record{}, fmt.Errorf("%w: item %d (id %d) missing number", ErrMalformedItem, idx, item.GetID())
	case item.State == nil:
		return model.Record{}, fmt.Errorf("%w: item #%d missing state", ErrMalformedItem, item.GetNumber())
	}

	// The pull_request block is the only thing distinguishing a PR from
	// an issue in the list payload.
	kind := model.KindIssue
	if item.PullRequestLinks != nil {
		kind = model.KindPR
	}

	labels := make([]string, 0, len(item.Labels))
	for _, label := range item.Labels {
		labels = append(labels, label.GetName())
	}

	rec := model.Record{
		Repo:       repo,
		ExternalID: item.GetID(),
		Number:     item.GetNumber(),
		Kind:       kind,
		State:      model.State(item.GetState()),
		Title:      item.GetTitle(),
		Author:     item.GetUser().GetLogin(),
		Assignee:   item.GetAssignee().GetLogin(),
		Labels:     labels,
	}

	if item.CreatedAt != nil {
		t := item.CreatedAt.Time
		rec.CreatedAt = &t
	}
	if item.ClosedAt != nil {
		t := item.ClosedAt.Time
		rec.ClosedAt = &t
	}
	// MergedAt stays nil: the list endpoint omits merge data, so records
	// from this source never carry a merge timestamp.

	return rec, nil
}
