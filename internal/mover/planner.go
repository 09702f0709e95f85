package mover

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"tiermover/internal/logging"
	"tiermover/internal/mediapath"
	"tiermover/internal/services/jellyfin"
)

// Outcome is the plan-level result for one candidate item, distinct from the
// per-file transfer Result.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeMoved
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeMoved:
		return "moved"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Candidate is a played item that passed the eligibility pre-filter.
type Candidate struct {
	Item      jellyfin.PlayedItem
	LocalPath string
	MediaType mediapath.MediaType
}

// Planner decides the file set to move for one candidate and orchestrates
// transfers and directory pruning. It never returns an error for a single
// bad file; failures are counted and the remaining files still attempted.
type Planner struct {
	cacheRoot    string
	bulkRoot     string
	subtitleExts map[string]struct{}
	transfer     *Transferrer
	logger       *slog.Logger
}

// NewPlanner constructs the relocation planner.
func NewPlanner(cacheRoot, bulkRoot string, subtitleExtensions []string, transfer *Transferrer, logger *slog.Logger) *Planner {
	exts := make(map[string]struct{}, len(subtitleExtensions))
	for _, ext := range subtitleExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Planner{
		cacheRoot:    cacheRoot,
		bulkRoot:     bulkRoot,
		subtitleExts: exts,
		transfer:     transfer,
		logger:       logging.NewComponentLogger(logger, "planner"),
	}
}

// Relocate processes one candidate and updates stats in place.
func (p *Planner) Relocate(cand Candidate, stats *Stats) Outcome {
	switch cand.MediaType {
	case mediapath.TypeMovie:
		return p.relocateMovie(cand, stats)
	case mediapath.TypeTV:
		return p.relocateEpisode(cand, stats)
	default:
		return p.relocateOpaque(cand, stats)
	}
}

// relocateMovie moves every regular file in the movie's containing folder,
// then prunes the emptied folder.
func (p *Planner) relocateMovie(cand Candidate, stats *Stats) Outcome {
	dir := filepath.Dir(cand.LocalPath)
	mainFile := filepath.Base(cand.LocalPath)

	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logger.Error("cannot list movie folder",
			logging.String("dir", dir),
			logging.Error(err),
		)
		stats.Errors++
		return OutcomeFailed
	}

	moved, failed := 0, 0
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		source := filepath.Join(dir, name)
		switch p.transfer.MoveFile(source, p.bulkPath(source)) {
		case ResultMoved:
			moved++
			switch {
			case p.isSubtitle(name):
				stats.MovieSubtitlesMoved++
			case name == mainFile:
				stats.VideosMoved++
			}
		case ResultFailed:
			failed++
			stats.Errors++
		}
	}

	if moved > 0 || p.transfer.dryRun {
		p.transfer.PruneEmptyUpward(dir, p.cacheRoot)
	}

	switch {
	case failed > 0:
		return OutcomeFailed
	case moved > 0:
		stats.MoviesMoved++
		return OutcomeMoved
	default:
		stats.ItemsSkipped++
		return OutcomeSkipped
	}
}

// relocateEpisode moves the episode's video plus sibling subtitles whose
// episode code matches exactly, then prunes the emptied season folders. The
// subtitle scan and the prune run even when the video transfer is skipped or
// fails, so subtitle drift from earlier out-of-band moves is corrected.
func (p *Planner) relocateEpisode(cand Candidate, stats *Stats) Outcome {
	dir := filepath.Dir(cand.LocalPath)
	videoDest := p.bulkPath(cand.LocalPath)

	outcome := OutcomeMoved
	if _, err := os.Stat(videoDest); err == nil {
		outcome = OutcomeSkipped
		stats.ItemsSkipped++
		p.logger.Info("episode video already on bulk tier, checking subtitles",
			logging.String("dest", videoDest),
		)
	} else {
		switch p.transfer.MoveFile(cand.LocalPath, videoDest) {
		case ResultMoved:
			stats.VideosMoved++
			stats.EpisodesMoved++
		case ResultSkipped:
			outcome = OutcomeSkipped
			stats.ItemsSkipped++
		case ResultFailed:
			stats.Errors++
			outcome = OutcomeFailed
		}
	}

	if code, ok := mediapath.ExtractEpisodeCode(filepath.Base(cand.LocalPath)); ok {
		p.moveMatchingSubtitles(dir, code, stats)
	}

	// The prune runs regardless of the video outcome; see the pruner's own
	// guards for why this can never delete content.
	p.transfer.PruneEmptyUpward(dir, p.cacheRoot)

	return outcome
}

// relocateOpaque handles items in neither pool: the single file is mirrored
// onto the bulk tier with no sibling scan.
func (p *Planner) relocateOpaque(cand Candidate, stats *Stats) Outcome {
	switch p.transfer.MoveFile(cand.LocalPath, p.bulkPath(cand.LocalPath)) {
	case ResultMoved:
		stats.VideosMoved++
		p.transfer.PruneEmptyUpward(filepath.Dir(cand.LocalPath), p.cacheRoot)
		return OutcomeMoved
	case ResultFailed:
		stats.Errors++
		return OutcomeFailed
	default:
		stats.ItemsSkipped++
		return OutcomeSkipped
	}
}

func (p *Planner) moveMatchingSubtitles(dir, episodeCode string, stats *Stats) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		// Directory may already be gone when the video was the only file.
		return
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		name := entry.Name()
		if !p.isSubtitle(name) {
			continue
		}
		code, ok := mediapath.ExtractEpisodeCode(name)
		if !ok || code != episodeCode {
			continue
		}
		source := filepath.Join(dir, name)
		switch p.transfer.MoveFile(source, p.bulkPath(source)) {
		case ResultMoved:
			stats.TVSubtitlesMoved++
		case ResultFailed:
			stats.Errors++
		}
	}
}

func (p *Planner) isSubtitle(name string) bool {
	_, ok := p.subtitleExts[strings.ToLower(filepath.Ext(name))]
	return ok
}

func (p *Planner) bulkPath(localPath string) string {
	return BulkPath(localPath, p.cacheRoot, p.bulkRoot)
}
