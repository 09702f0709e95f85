package runner

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tiermover/internal/history"
	"tiermover/internal/services"
	"tiermover/internal/services/jellyfin"
	"tiermover/internal/testsupport"
)

type fakeSource struct {
	pingErr  error
	userErr  error
	fetchErr error
	items    []jellyfin.PlayedItem
	fetched  []string
}

func (f *fakeSource) Ping(context.Context) (jellyfin.SystemInfo, error) {
	if f.pingErr != nil {
		return jellyfin.SystemInfo{}, f.pingErr
	}
	return jellyfin.SystemInfo{ServerName: "test", Version: "10.9"}, nil
}

func (f *fakeSource) GetUser(_ context.Context, userID string) (jellyfin.User, error) {
	if f.userErr != nil {
		return jellyfin.User{}, f.userErr
	}
	return jellyfin.User{ID: userID, Name: "viewer"}, nil
}

func (f *fakeSource) FetchPlayed(_ context.Context, userIDs []string) ([]jellyfin.PlayedItem, error) {
	f.fetched = userIDs
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.items, nil
}

func fullStatfs(string) (uint64, uint64, error)  { return 1000, 50, nil } // 95% used
func emptyStatfs(string) (uint64, uint64, error) { return 1000, 900, nil } // 10% used

func notBusy(string) bool { return false }

func TestRunMovesEligibleMovie(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	movieDir := filepath.Join(cfg.Paths.LocalPrefix, "movies-pool", "Film (2020)")
	video := testsupport.WriteMediaFile(t, filepath.Join(movieDir, "Film (2020).mkv"), "video-bytes")
	testsupport.WriteMediaFile(t, filepath.Join(movieDir, "Film (2020).srt"), "subs")

	source := &fakeSource{items: []jellyfin.PlayedItem{
		{Name: "Film", Kind: jellyfin.KindMovie, RemotePath: "/media/media/movies-pool/Film (2020)/Film (2020).mkv"},
	}}

	// Config defaults to dry-run; this test exercises a live move.
	cfg.Mover.DryRun = false

	var progress bytes.Buffer
	r := New(cfg, source, nil, Options{
		Progress:  &progress,
		Statfs:    fullStatfs,
		BusyProbe: notBusy,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", summary.Status, summary.Detail)
	}
	if summary.Stats.MoviesMoved != 1 || summary.Stats.MovieSubtitlesMoved != 1 {
		t.Fatalf("unexpected stats: %+v", summary.Stats)
	}

	moved := filepath.Join(cfg.Tiers.BulkRoot, "media", "movies-pool", "Film (2020)", "Film (2020).mkv")
	if _, err := os.Stat(moved); err != nil {
		t.Fatalf("expected video on bulk tier: %v", err)
	}
	if _, err := os.Stat(video); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("source video must be gone after live move")
	}

	out := progress.String()
	for _, want := range []string{
		"STATUS: checking external dependencies",
		"STATUS: cache tier usage 95% (threshold 90%)",
		"STATUS: [1/1] movie \"Film\"",
		"STATUS: run complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("progress output missing %q:\n%s", want, out)
		}
	}
}

func TestRunBelowThresholdSkipsCleanly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := &fakeSource{}

	var progress bytes.Buffer
	r := New(cfg, source, nil, Options{
		Progress:  &progress,
		Statfs:    emptyStatfs,
		BusyProbe: notBusy,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Status != StatusBelowThreshold {
		t.Fatalf("expected below-threshold, got %s", summary.Status)
	}
	if source.fetched != nil {
		t.Fatal("fetch must not run below threshold")
	}
	if !strings.Contains(progress.String(), "no action needed") {
		t.Fatalf("missing clean-skip message:\n%s", progress.String())
	}
}

func TestRunSkipsWhenMoverBusy(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := &fakeSource{}

	r := New(cfg, source, nil, Options{
		Progress:  &bytes.Buffer{},
		Statfs:    fullStatfs,
		BusyProbe: func(string) bool { return true },
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Status != StatusSkippedBusy {
		t.Fatalf("expected skipped-busy, got %s", summary.Status)
	}
	if source.fetched != nil {
		t.Fatal("fetch must not run while the mover is busy")
	}
}

func TestRunFetchFailureIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fetchErr := services.Wrap(services.ErrConnectivity, "jellyfin", "fetch played items", "boom", nil)
	source := &fakeSource{fetchErr: fetchErr}

	r := New(cfg, source, nil, Options{
		Progress:  &bytes.Buffer{},
		Statfs:    fullStatfs,
		BusyProbe: notBusy,
	})

	summary, err := r.Run(context.Background())
	if err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if !services.IsFatal(err) {
		t.Fatalf("fetch failure must be fatal: %v", err)
	}
	if summary.Status != StatusFailed {
		t.Fatalf("expected failed status, got %s", summary.Status)
	}
}

func TestRunIneligibleItemsCountAsSkipped(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	source := &fakeSource{items: []jellyfin.PlayedItem{
		// Path translates but no file exists on the local filesystem.
		{Name: "Gone", Kind: jellyfin.KindMovie, RemotePath: "/media/media/movies-pool/Gone (1999)/Gone (1999).mkv"},
	}}

	r := New(cfg, source, nil, Options{
		Progress:  &bytes.Buffer{},
		Statfs:    fullStatfs,
		BusyProbe: notBusy,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Candidates != 0 {
		t.Fatalf("expected no candidates, got %d", summary.Candidates)
	}
	if summary.Stats.ItemsSkipped != 1 {
		t.Fatalf("expected 1 skipped, got %+v", summary.Stats)
	}
}

func TestRunDryRunDoesNotMutate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	movieDir := filepath.Join(cfg.Paths.LocalPrefix, "movies-pool", "Film (2020)")
	video := testsupport.WriteMediaFile(t, filepath.Join(movieDir, "Film (2020).mkv"), "video-bytes")

	source := &fakeSource{items: []jellyfin.PlayedItem{
		{Name: "Film", Kind: jellyfin.KindMovie, RemotePath: "/media/media/movies-pool/Film (2020)/Film (2020).mkv"},
	}}

	r := New(cfg, source, nil, Options{
		DryRun:    true,
		Progress:  &bytes.Buffer{},
		Statfs:    fullStatfs,
		BusyProbe: notBusy,
	})

	summary, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !summary.DryRun {
		t.Fatal("summary must carry the dry-run flag")
	}
	if summary.Stats.MoviesMoved != 1 {
		t.Fatalf("dry run must still predict the move: %+v", summary.Stats)
	}
	if !strings.HasPrefix(summary.Detail, "dry-run prediction:") {
		t.Fatalf("dry-run summary must be labeled a prediction: %q", summary.Detail)
	}
	if _, err := os.Stat(video); err != nil {
		t.Fatalf("dry run must not touch the source: %v", err)
	}
	bulkMirror := filepath.Join(cfg.Tiers.BulkRoot, "media")
	if _, err := os.Stat(bulkMirror); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("dry run must not create bulk-tier directories")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	r := New(cfg, &fakeSource{}, nil, Options{
		Progress:  &bytes.Buffer{},
		Statfs:    emptyStatfs,
		BusyProbe: notBusy,
		Recorder:  store,
	})

	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	runs, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 recorded run, got %d", len(runs))
	}
	if runs[0].Status != string(StatusBelowThreshold) {
		t.Fatalf("unexpected recorded status: %s", runs[0].Status)
	}
	if runs[0].Duration() < 0 || runs[0].Duration() > time.Minute {
		t.Fatalf("implausible duration: %s", runs[0].Duration())
	}
}
