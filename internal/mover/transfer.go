package mover

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"tiermover/internal/fileutil"
	"tiermover/internal/logging"
)

// Result is the three-way outcome of a single file transfer.
type Result int

const (
	// ResultSkipped means the destination already existed; the source was
	// left untouched. Repeated runs are idempotent because of this check.
	ResultSkipped Result = iota
	// ResultMoved means the file was relocated (or would be, in dry-run).
	ResultMoved
	// ResultFailed means directory creation or the verified copy failed.
	// The source is never deleted on failure.
	ResultFailed
)

func (r Result) String() string {
	switch r {
	case ResultMoved:
		return "moved"
	case ResultFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Transferrer moves single files between tiers with at-most-once semantics.
type Transferrer struct {
	dryRun bool
	logger *slog.Logger
}

// NewTransferrer constructs the file transfer primitive.
func NewTransferrer(dryRun bool, logger *slog.Logger) *Transferrer {
	return &Transferrer{
		dryRun: dryRun,
		logger: logging.NewComponentLogger(logger, "transfer"),
	}
}

// MoveFile relocates source to dest. An existing destination short-circuits
// to ResultSkipped without touching the source. In dry-run mode the intended
// action is logged (with a human-readable size) and nothing is mutated. In
// live mode missing parent directories are created and the file is moved via
// a checksum-verified copy; the source is removed only after verification.
func (t *Transferrer) MoveFile(source, dest string) Result {
	if fileutil.IsRegularFile(dest) {
		t.logger.Info("destination already exists, skipping",
			logging.String("source", source),
			logging.String("dest", dest),
		)
		return ResultSkipped
	}

	if t.dryRun {
		size := "unknown size"
		if info, err := os.Stat(source); err == nil {
			size = humanize.IBytes(uint64(info.Size()))
		}
		t.logger.Info("would move file",
			logging.String("source", source),
			logging.String("dest", dest),
			logging.String("size", size),
		)
		return ResultMoved
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		t.logger.Error("failed to create destination directory",
			logging.String("source", source),
			logging.String("dest", dest),
			logging.Error(err),
		)
		return ResultFailed
	}

	if err := fileutil.CopyFileVerified(source, dest); err != nil {
		t.logger.Error("verified copy failed, source retained",
			logging.String("source", source),
			logging.String("dest", dest),
			logging.Error(err),
		)
		return ResultFailed
	}

	if err := os.Remove(source); err != nil {
		// Copy is verified; a stale source is an operator cleanup, not a
		// transfer failure.
		t.logger.Warn("failed to remove source after verified copy",
			logging.String("source", source),
			logging.Error(err),
		)
	}

	t.logger.Info("moved file ok",
		logging.String("source", source),
		logging.String("dest", dest),
	)
	return ResultMoved
}
