package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"
	"time"

	"github.com/spiffcs/repowatch/internal/model"
)

func TestWriteCSV(t *testing.T) {
	created := time.Date(2025, 6, 5, 12, 0, 0, 0, time.UTC)
	closed := time.Date(2025, 6, 13, 8, 30, 0, 0, time.UTC)
	records := []model.Record{
		{
			Repo: "acme/widgets", ExternalID: 101, Number: 1,
			Kind: model.KindIssue, State: model.StateOpen,
			Title: "crash, with comma", Author: "alice", Assignee: "bob",
			CreatedAt: &created, Labels: []string{"bug", "p1"},
		},
		{
			Repo: "acme/widgets", ExternalID: 102, Number: 2,
			Kind: model.KindPR, State: model.StateClosed,
			Title: "fix crash", Author: "bob",
			CreatedAt: &created, ClosedAt: &closed, Labels: []string{},
		},
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want 3 (header + 2 records)", len(rows))
	}

	if !reflect.DeepEqual(rows[0], csvHeader) {
		t.Errorf("header = %v, want %v", rows[0], csvHeader)
	}

	wantFirst := []string{
		"acme/widgets", "101", "1", "issue", "open", "crash, with comma",
		"alice", "bob", "2025-06-05T12:00:00Z", "", "", "bug,p1",
	}
	if !reflect.DeepEqual(rows[1], wantFirst) {
		t.Errorf("first row = %v, want %v", rows[1], wantFirst)
	}

	wantSecond := []string{
		"acme/widgets", "102", "2", "pr", "closed", "fix crash",
		"bob", "", "2025-06-05T12:00:00Z", "2025-06-13T08:30:00Z", "", "",
	}
	if !reflect.DeepEqual(rows[2], wantSecond) {
		t.Errorf("second row = %v, want %v", rows[2], wantSecond)
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading back csv: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("row count = %d, want header only", len(rows))
	}
}
