package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"tiermover/internal/config"
	"tiermover/internal/deps"
	"tiermover/internal/diskusage"
	"tiermover/internal/history"
	"tiermover/internal/logging"
	"tiermover/internal/mediapath"
	"tiermover/internal/mover"
	"tiermover/internal/preflight"
	"tiermover/internal/services"
	"tiermover/internal/services/jellyfin"
)

// PlaybackSource is the subset of the Jellyfin client the runner needs.
type PlaybackSource interface {
	Ping(ctx context.Context) (jellyfin.SystemInfo, error)
	GetUser(ctx context.Context, userID string) (jellyfin.User, error)
	FetchPlayed(ctx context.Context, userIDs []string) ([]jellyfin.PlayedItem, error)
}

// RunRecorder persists completed runs; *history.Store satisfies it.
type RunRecorder interface {
	Record(ctx context.Context, started, finished time.Time, dryRun bool, status, detail string, stats mover.Stats) (history.Run, error)
}

// Status labels the terminal state of a relocation pass.
type Status string

const (
	StatusCompleted      Status = "completed"
	StatusSkippedBusy    Status = "skipped-busy"
	StatusBelowThreshold Status = "below-threshold"
	StatusFailed         Status = "failed"
)

// Summary is the aggregate outcome of one relocation pass.
type Summary struct {
	Status      Status
	Detail      string
	DryRun      bool
	StartedAt   time.Time
	FinishedAt  time.Time
	UsedPercent int
	Fetched     int
	Candidates  int
	Stats       mover.Stats
}

// Duration returns the wall-clock length of the pass.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Options tunes runner construction. Zero values select production behavior.
type Options struct {
	// DryRun forces simulation regardless of the configured mode.
	DryRun bool
	// Progress receives line-oriented STATUS output; defaults to os.Stdout.
	Progress io.Writer
	// Statfs overrides the cache-tier usage probe for tests.
	Statfs diskusage.StatfsFunc
	// Recorder persists run history; nil disables recording.
	Recorder RunRecorder
	// BusyProbe overrides storage-pool mover detection for tests.
	BusyProbe func(pidFile string) bool
}

// Runner drives one relocation pass through its fixed stage sequence. Stages
// run strictly in order; a fatal stage failure aborts the pass before any
// file is touched, while per-item transfer failures are counted and never
// abort the batch.
type Runner struct {
	cfg       *config.Config
	source    PlaybackSource
	logger    *slog.Logger
	progress  io.Writer
	statfs    diskusage.StatfsFunc
	recorder  RunRecorder
	busyProbe func(string) bool
	dryRun    bool
}

// New constructs a runner for one pass over cfg.
func New(cfg *config.Config, source PlaybackSource, logger *slog.Logger, opts Options) *Runner {
	progress := opts.Progress
	if progress == nil {
		progress = os.Stdout
	}
	busyProbe := opts.BusyProbe
	if busyProbe == nil {
		busyProbe = preflight.MoverBusy
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		cfg:       cfg,
		source:    source,
		logger:    logging.NewComponentLogger(logger, "runner"),
		progress:  progress,
		statfs:    opts.Statfs,
		recorder:  opts.Recorder,
		busyProbe: busyProbe,
		dryRun:    opts.DryRun || cfg.Mover.DryRun,
	}
}

// Run executes the pass. The returned error is non-nil only for fatal
// conditions (dependency, validation, connectivity, fetch); both skip
// outcomes and per-item transfer failures return a nil error.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	summary := Summary{DryRun: r.dryRun, StartedAt: time.Now()}
	r.status("initializing")
	r.logHeader()

	if err := r.checkDependencies(); err != nil {
		return r.fail(ctx, summary, err)
	}
	users, err := r.validateSource(ctx)
	if err != nil {
		return r.fail(ctx, summary, err)
	}
	if err := r.validatePaths(); err != nil {
		return r.fail(ctx, summary, err)
	}

	r.status("checking storage-pool mover activity")
	if r.busyProbe(r.cfg.Mover.MoverPIDFile) {
		r.status("storage-pool mover is busy, skipping this pass")
		return r.finish(ctx, summary, StatusSkippedBusy, "storage-pool mover active")
	}

	usage, err := diskusage.Measure(r.cfg.Tiers.CacheRoot, r.statfs)
	if err != nil {
		return r.fail(ctx, summary, services.Wrap(services.ErrConfiguration, "threshold", "measure cache tier", "Cannot determine cache tier usage", err))
	}
	summary.UsedPercent = usage.UsedPercent()
	threshold := r.cfg.Mover.ThresholdPercent
	r.status(fmt.Sprintf("cache tier usage %d%% (threshold %d%%)", summary.UsedPercent, threshold))
	if summary.UsedPercent < threshold {
		detail := fmt.Sprintf("usage %d%% below threshold %d%%, no action needed", summary.UsedPercent, threshold)
		r.status(detail)
		return r.finish(ctx, summary, StatusBelowThreshold, detail)
	}

	r.status("fetching played items")
	items, err := r.source.FetchPlayed(ctx, users)
	if err != nil {
		return r.fail(ctx, summary, err)
	}
	summary.Fetched = len(items)
	r.status(fmt.Sprintf("fetched %d played items across %d accounts", len(items), len(users)))

	candidates := r.filter(items, &summary.Stats)
	summary.Candidates = len(candidates)
	r.status(fmt.Sprintf("%d of %d items need relocation", len(candidates), len(items)))

	if err := r.relocate(ctx, candidates, &summary.Stats); err != nil {
		return r.fail(ctx, summary, err)
	}

	detail := fmt.Sprintf("%d moved, %d skipped, %d errors",
		summary.Stats.ItemsMoved(), summary.Stats.ItemsSkipped, summary.Stats.Errors)
	if r.dryRun {
		detail = "dry-run prediction: " + detail
	}
	r.status("run complete: " + detail)
	return r.finish(ctx, summary, StatusCompleted, detail)
}

func (r *Runner) checkDependencies() error {
	r.status("checking external dependencies")
	statuses := deps.CheckBinaries(deps.Requirements())
	for _, status := range statuses {
		if !status.Available && status.Optional {
			r.logger.Warn("optional tool unavailable",
				logging.String("tool", status.Name),
				logging.String("detail", status.Detail),
			)
		}
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "deps", "check binaries",
			"Missing required tools: "+strings.Join(missing, ", "), nil)
	}
	return nil
}

func (r *Runner) validateSource(ctx context.Context) ([]string, error) {
	r.status("validating playback source and accounts")
	info, err := r.source.Ping(ctx)
	if err != nil {
		return nil, err
	}
	r.logger.Info("playback source reachable",
		logging.String("server", info.ServerName),
		logging.String("version", info.Version),
	)

	users := r.cfg.NormalizedUserIDs()
	for _, id := range users {
		user, err := r.source.GetUser(ctx, id)
		if err != nil {
			return nil, err
		}
		r.logger.Info("account resolved",
			logging.String("user", user.Name),
		)
	}
	return users, nil
}

func (r *Runner) validatePaths() error {
	r.status("validating tier paths")
	results := []preflight.Result{
		preflight.CheckDirectoryAccess("Cache tier root", r.cfg.Tiers.CacheRoot),
		preflight.CheckDirectoryAccess("Bulk tier root", r.cfg.Tiers.BulkRoot),
		preflight.CheckDirectoryAccess("Log directory", r.cfg.Paths.LogDir),
	}
	for _, result := range results {
		if !result.Passed {
			return services.Wrap(services.ErrConfiguration, "preflight", result.Name, result.Detail, nil)
		}
	}
	return nil
}

// filter applies the eligibility pre-filter to every fetched item. Rejected
// items count as skipped without ever reaching the planner.
func (r *Runner) filter(items []jellyfin.PlayedItem, stats *mover.Stats) []mover.Candidate {
	var candidates []mover.Candidate
	for _, item := range items {
		local := mediapath.Translate(item.RemotePath, r.cfg.Paths.RemotePrefix, r.cfg.Paths.LocalPrefix)
		ok, reason := mover.NeedsMove(local, r.cfg.Tiers.CacheRoot, r.cfg.Tiers.BulkRoot)
		if !ok {
			stats.ItemsSkipped++
			r.logger.Debug("item not eligible",
				logging.String("name", item.Name),
				logging.String("path", local),
				logging.String("reason", reason),
			)
			continue
		}
		candidates = append(candidates, mover.Candidate{
			Item:      item,
			LocalPath: local,
			MediaType: mediapath.Classify(local, r.cfg.Tiers.MoviesPool, r.cfg.Tiers.TVPool),
		})
	}
	return candidates
}

func (r *Runner) relocate(ctx context.Context, candidates []mover.Candidate, stats *mover.Stats) error {
	transfer := mover.NewTransferrer(r.dryRun, r.logger)
	planner := mover.NewPlanner(r.cfg.Tiers.CacheRoot, r.cfg.Tiers.BulkRoot, r.cfg.Mover.SubtitleExtensions, transfer, r.logger)

	total := len(candidates)
	for i, cand := range candidates {
		select {
		case <-ctx.Done():
			return services.Wrap(services.ErrTransient, "relocate", "batch", "Relocation interrupted", ctx.Err())
		default:
		}
		r.status(fmt.Sprintf("[%d/%d] %s %q", i+1, total, cand.MediaType, displayName(cand.Item)))
		planner.Relocate(cand, stats)
	}
	return nil
}

func displayName(item jellyfin.PlayedItem) string {
	if item.Kind == jellyfin.KindEpisode && item.SeriesName != "" {
		return item.SeriesName + ": " + item.Name
	}
	return item.Name
}

func (r *Runner) status(message string) {
	fmt.Fprintf(r.progress, "STATUS: %s\n", message)
}

func (r *Runner) logHeader() {
	mode := "live"
	if r.dryRun {
		mode = "dry-run"
	}
	r.logger.Info("relocation pass started",
		logging.String("mode", mode),
		logging.Int("threshold_percent", r.cfg.Mover.ThresholdPercent),
	)
}

func (r *Runner) finish(ctx context.Context, summary Summary, status Status, detail string) (Summary, error) {
	summary.Status = status
	summary.Detail = detail
	summary.FinishedAt = time.Now()
	r.record(ctx, summary)
	r.logger.Info("relocation pass finished",
		logging.String("status", string(status)),
		logging.Duration("duration", summary.Duration()),
		logging.Int("moved", summary.Stats.ItemsMoved()),
		logging.Int("skipped", summary.Stats.ItemsSkipped),
		logging.Int("errors", summary.Stats.Errors),
	)
	return summary, nil
}

func (r *Runner) fail(ctx context.Context, summary Summary, err error) (Summary, error) {
	summary.Status = StatusFailed
	summary.Detail = err.Error()
	summary.FinishedAt = time.Now()
	r.record(ctx, summary)
	r.logger.Error("relocation pass failed", logging.Error(err))
	return summary, err
}

func (r *Runner) record(ctx context.Context, summary Summary) {
	if r.recorder == nil {
		return
	}
	if _, err := r.recorder.Record(ctx, summary.StartedAt, summary.FinishedAt, summary.DryRun, string(summary.Status), summary.Detail, summary.Stats); err != nil {
		r.logger.Warn("failed to record run history", logging.Error(err))
	}
}
