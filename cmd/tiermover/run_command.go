package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"tiermover/internal/history"
	"tiermover/internal/runner"
	"tiermover/internal/services/jellyfin"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one relocation pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			lock := flock.New(cfg.LockFile())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire run lock: %w", err)
			}
			if !locked {
				fmt.Fprintln(out, "Another relocation pass is already running; exiting.")
				return nil
			}
			defer func() { _ = lock.Unlock() }()

			logger, err := ctx.newLogger(cfg)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}

			var recorder runner.RunRecorder
			store, err := history.Open(cfg.HistoryDBPath())
			if err != nil {
				fmt.Fprintf(out, "Warning: run history unavailable: %v\n", err)
			} else {
				recorder = store
				defer store.Close()
			}

			client := jellyfin.NewClient(cfg.Jellyfin.URL, cfg.Jellyfin.APIKey, &http.Client{Timeout: 30 * time.Second})
			r := runner.New(cfg, client, logger, runner.Options{
				DryRun:   dryRun,
				Progress: out,
				Recorder: recorder,
			})

			summary, err := r.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, renderSummary(summary))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Simulate the pass without moving files")
	return cmd
}

func renderSummary(summary runner.Summary) string {
	mode := "live"
	if summary.DryRun {
		mode = "dry-run (prediction)"
	}
	rows := [][]string{
		{"Mode", mode},
		{"Status", string(summary.Status)},
		{"Cache usage", strconv.Itoa(summary.UsedPercent) + "%"},
		{"Items fetched", strconv.Itoa(summary.Fetched)},
		{"Candidates", strconv.Itoa(summary.Candidates)},
		{"Movies moved", strconv.Itoa(summary.Stats.MoviesMoved)},
		{"Episodes moved", strconv.Itoa(summary.Stats.EpisodesMoved)},
		{"Videos moved", strconv.Itoa(summary.Stats.VideosMoved)},
		{"Subtitles moved", strconv.Itoa(summary.Stats.SubtitlesMoved())},
		{"Items skipped", strconv.Itoa(summary.Stats.ItemsSkipped)},
		{"Errors", strconv.Itoa(summary.Stats.Errors)},
		{"Duration", summary.Duration().Round(time.Millisecond).String()},
	}
	return renderTable(
		[]string{"Field", "Value"},
		rows,
		[]columnAlignment{alignLeft, alignRight},
	)
}
