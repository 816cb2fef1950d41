package model

import (
	"testing"
	"time"
)

func TestCategorySeverity(t *testing.T) {
	tests := []struct {
		category Category
		want     Severity
	}{
		{CategoryTooManyOpenIssues, SeverityCritical},
		{CategoryTooManyOpenPRs, SeverityWarning},
		{CategoryStalePRs, SeverityWarning},
		{CategoryNoRecentActivity, SeverityInfo},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := tt.category.Severity(); got != tt.want {
				t.Errorf("Severity() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAllCategoriesOrder(t *testing.T) {
	want := []Category{
		CategoryTooManyOpenIssues,
		CategoryTooManyOpenPRs,
		CategoryStalePRs,
		CategoryNoRecentActivity,
	}
	if len(AllCategories) != len(want) {
		t.Fatalf("len(AllCategories) = %d, want %d", len(AllCategories), len(want))
	}
	for i, c := range AllCategories {
		if c != want[i] {
			t.Errorf("AllCategories[%d] = %q, want %q", i, c, want[i])
		}
	}
}

func TestRecordLastActivity(t *testing.T) {
	created := testTime(10)
	closed := testTime(4)
	merged := testTime(2)

	tests := []struct {
		name   string
		record Record
		want   *int
	}{
		{"no timestamps", Record{}, nil},
		{"created only", Record{CreatedAt: &created}, intPtr(10)},
		{"merged newest", Record{CreatedAt: &created, ClosedAt: &closed, MergedAt: &merged}, intPtr(2)},
		{"closed newest", Record{CreatedAt: &created, ClosedAt: &closed}, intPtr(4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.record.LastActivity()
			if tt.want == nil {
				if ok {
					t.Fatalf("LastActivity() ok = true, want false")
				}
				return
			}
			if !ok {
				t.Fatalf("LastActivity() ok = false, want true")
			}
			if want := testTime(*tt.want); !got.Equal(want) {
				t.Errorf("LastActivity() = %v, want %v", got, want)
			}
		})
	}
}

func testTime(daysAgo int) time.Time {
	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	return base.Add(-time.Duration(daysAgo) * 24 * time.Hour)
}

func intPtr(v int) *int { return &v }
