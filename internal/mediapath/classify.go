package mediapath

import "strings"

// MediaType identifies which pool a local path belongs to.
type MediaType int

const (
	TypeUnknown MediaType = iota
	TypeMovie
	TypeTV
)

func (t MediaType) String() string {
	switch t {
	case TypeMovie:
		return "movie"
	case TypeTV:
		return "tv"
	default:
		return "unknown"
	}
}

// Classify determines whether localPath lives under the movie pool or the TV
// pool. The pool name must match a whole path segment; a sibling folder such
// as "movies-pool-backup" does not count. The movie pool is checked first.
func Classify(localPath, moviesPool, tvPool string) MediaType {
	if hasSegment(localPath, moviesPool) {
		return TypeMovie
	}
	if hasSegment(localPath, tvPool) {
		return TypeTV
	}
	return TypeUnknown
}

func hasSegment(path, segment string) bool {
	if segment == "" {
		return false
	}
	for _, part := range strings.Split(path, "/") {
		if part == segment {
			return true
		}
	}
	return false
}
