package config

import (
	"errors"
	"testing"
	"time"

	"github.com/spiffcs/repowatch/internal/constants"
)

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"OpenIssues", th.OpenIssues, 80},
		{"OpenPRs", th.OpenPRs, 20},
		{"StalePRDays", th.StalePRDays, 7},
		{"InactiveDays", th.InactiveDays, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("DefaultThresholds().%s = %d, want %d", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestGetThresholds(t *testing.T) {
	t.Run("returns defaults when no overrides", func(t *testing.T) {
		cfg := &Config{}
		th := cfg.GetThresholds()

		if th != DefaultThresholds() {
			t.Errorf("GetThresholds() = %+v, want defaults", th)
		}
	})

	t.Run("merges partial overrides", func(t *testing.T) {
		issues := 150
		cfg := &Config{
			Thresholds: &ThresholdOverrides{
				OpenIssues: &issues,
			},
		}
		th := cfg.GetThresholds()

		if th.OpenIssues != 150 {
			t.Errorf("GetThresholds().OpenIssues = %d, want 150", th.OpenIssues)
		}
		// Remaining values keep their defaults
		if th.OpenPRs != 20 {
			t.Errorf("GetThresholds().OpenPRs = %d, want 20", th.OpenPRs)
		}
		if th.StalePRDays != 7 {
			t.Errorf("GetThresholds().StalePRDays = %d, want 7", th.StalePRDays)
		}
	})
}

func TestThresholdsValidate(t *testing.T) {
	tests := []struct {
		name    string
		th      Thresholds
		wantErr bool
	}{
		{"defaults", DefaultThresholds(), false},
		{"custom positive", Thresholds{1, 1, 1, 1}, false},
		{"zero issues", Thresholds{0, 20, 7, 3}, true},
		{"negative prs", Thresholds{80, -1, 7, 3}, true},
		{"zero stale days", Thresholds{80, 20, 0, 3}, true},
		{"zero inactive days", Thresholds{80, 20, 7, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.th.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("error %v does not wrap ErrInvalid", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidRepo(t *testing.T) {
	tests := []struct {
		repo string
		want bool
	}{
		{"microsoft/fabric-samples", true},
		{"owner/repo", true},
		{"no-slash", false},
		{"/leading", false},
		{"trailing/", false},
		{"too/many/parts", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.repo, func(t *testing.T) {
			if got := ValidRepo(tt.repo); got != tt.want {
				t.Errorf("ValidRepo(%q) = %v, want %v", tt.repo, got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	badThreshold := -5

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty config", Config{}, false},
		{"valid", Config{Repos: []string{"a/b"}, DefaultFormat: "json"}, false},
		{"bad repo", Config{Repos: []string{"nope"}}, true},
		{"bad format", Config{DefaultFormat: "xml"}, true},
		{"bad threshold", Config{Thresholds: &ThresholdOverrides{OpenPRs: &badThreshold}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalid) {
					t.Errorf("expected ErrInvalid, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetWatchInterval(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		cfg := &Config{}
		d, err := cfg.GetWatchInterval()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != constants.WatchRefreshInterval {
			t.Errorf("interval = %v, want %v", d, constants.WatchRefreshInterval)
		}
	})

	t.Run("configured", func(t *testing.T) {
		interval := "30m"
		cfg := &Config{Watch: &WatchOverrides{Interval: &interval}}
		d, err := cfg.GetWatchInterval()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d != 30*time.Minute {
			t.Errorf("interval = %v, want 30m", d)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		interval := "soon"
		cfg := &Config{Watch: &WatchOverrides{Interval: &interval}}
		if _, err := cfg.GetWatchInterval(); !errors.Is(err, ErrInvalid) {
			t.Errorf("expected ErrInvalid, got %v", err)
		}
	})
}

func TestMergeConfig(t *testing.T) {
	globalIssues := 100
	localPRs := 5

	global := &Config{
		Repos:         []string{"global/repo"},
		DefaultFormat: "table",
		Thresholds:    &ThresholdOverrides{OpenIssues: &globalIssues},
	}
	local := &Config{
		DefaultFormat: "json",
		Thresholds:    &ThresholdOverrides{OpenPRs: &localPRs},
	}

	merged := mergeConfig(global, local)

	if merged.DefaultFormat != "json" {
		t.Errorf("DefaultFormat = %q, want local %q", merged.DefaultFormat, "json")
	}
	if len(merged.Repos) != 1 || merged.Repos[0] != "global/repo" {
		t.Errorf("Repos = %v, want global list preserved", merged.Repos)
	}

	th := merged.GetThresholds()
	if th.OpenIssues != 100 {
		t.Errorf("OpenIssues = %d, want global override 100", th.OpenIssues)
	}
	if th.OpenPRs != 5 {
		t.Errorf("OpenPRs = %d, want local override 5", th.OpenPRs)
	}
	if th.StalePRDays != 7 {
		t.Errorf("StalePRDays = %d, want default 7", th.StalePRDays)
	}
}
