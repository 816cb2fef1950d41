// Package model contains domain types for the repowatch application.
// These types are independent of any external GitHub library.
package model

import "time"

// Kind discriminates issues from pull requests.
type Kind string

const (
	KindIssue Kind = "issue"
	KindPR    Kind = "pr"
)

// State represents the tracker state of a record.
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Record is a single issue or pull request normalized from the tracker API.
// The issues list endpoint returns both kinds mixed together; pull requests
// are identified by the pull_request block on the raw payload.
//
// MergedAt is never populated from that endpoint because the list payload
// omits merge data. The field exists because the activity check reads it
// when records arrive from sources that do carry it.
type Record struct {
	Repo       string     `json:"repo"`
	ExternalID int64      `json:"externalId"`
	Number     int        `json:"number"`
	Kind       Kind       `json:"kind"`
	State      State      `json:"state"`
	Title      string     `json:"title,omitempty"`
	Author     string     `json:"author,omitempty"`
	Assignee   string     `json:"assignee,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
	ClosedAt   *time.Time `json:"closedAt,omitempty"`
	MergedAt   *time.Time `json:"mergedAt,omitempty"`
	Labels     []string   `json:"labels"`
}

// IsOpen reports whether the record is in the open state.
func (r Record) IsOpen() bool {
	return r.State == StateOpen
}

// LastActivity returns the latest defined timestamp among CreatedAt,
// ClosedAt and MergedAt. The second return is false when the record has
// no timestamps at all.
func (r Record) LastActivity() (time.Time, bool) {
	var last time.Time
	var found bool
	for _, ts := range []*time.Time{r.CreatedAt, r.ClosedAt, r.MergedAt} {
		if ts == nil {
			continue
		}
		if !found || ts.After(last) {
			last = *ts
			found = true
		}
	}
	return last, found
}
