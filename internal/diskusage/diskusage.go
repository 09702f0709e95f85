// Package diskusage reports filesystem usage for the cache tier threshold
// check. The statfs call is injectable so tests can simulate any fill level.
package diskusage

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// StatfsFunc returns total and free bytes for the filesystem holding path.
type StatfsFunc func(path string) (total, free uint64, err error)

// Usage describes the current fill level of a filesystem.
type Usage struct {
	TotalBytes uint64
	FreeBytes  uint64
}

// UsedPercent returns the used fraction as a whole percentage, rounded down.
func (u Usage) UsedPercent() int {
	if u.TotalBytes == 0 {
		return 0
	}
	used := u.TotalBytes - u.FreeBytes
	return int(used * 100 / u.TotalBytes)
}

// Measure returns usage for the filesystem holding path using the supplied
// statfs; pass nil to use the real syscall.
func Measure(path string, statfs StatfsFunc) (Usage, error) {
	if statfs == nil {
		statfs = RealStatfs
	}
	total, free, err := statfs(path)
	if err != nil {
		return Usage{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return Usage{TotalBytes: total, FreeBytes: free}, nil
}

// RealStatfs queries the kernel for filesystem capacity at path.
func RealStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
