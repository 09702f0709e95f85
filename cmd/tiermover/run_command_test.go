package main

import (
	"strings"
	"testing"
	"time"

	"tiermover/internal/mover"
	"tiermover/internal/runner"
)

func TestRenderSummaryLabelsDryRun(t *testing.T) {
	now := time.Now()
	summary := runner.Summary{
		Status:      runner.StatusCompleted,
		DryRun:      true,
		StartedAt:   now,
		FinishedAt:  now.Add(3 * time.Second),
		UsedPercent: 93,
		Fetched:     10,
		Candidates:  4,
		Stats: mover.Stats{
			MoviesMoved:         2,
			EpisodesMoved:       1,
			VideosMoved:         3,
			MovieSubtitlesMoved: 1,
			ItemsSkipped:        6,
		},
	}

	out := renderSummary(summary)
	for _, want := range []string{"dry-run (prediction)", "93%", "completed", "3s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B"},
		[][]string{{"only-a"}},
		[]columnAlignment{alignLeft, alignRight},
	)
	if !strings.Contains(out, "only-a") {
		t.Fatalf("missing cell content:\n%s", out)
	}
}
