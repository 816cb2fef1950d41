package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskFetch TaskID = iota // Fetching issues and pull requests
	TaskCheck               // Evaluating thresholds and sending alerts
)

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task     TaskID
	Status   TaskStatus
	Message  string  // Optional detail (e.g., "2/5 repositories")
	Progress float64 // Progress from 0.0 to 1.0
	Error    error   // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports the GitHub API quota observed during a fetch.
type RateLimitEvent struct {
	Remaining int
	Low       bool
	ResetAt   time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
