package mover

// Stats accumulates the outcome counts for one relocation pass. A fresh value
// is created per run and threaded through the call chain; nothing here is
// process-global.
type Stats struct {
	MoviesMoved         int
	EpisodesMoved       int
	VideosMoved         int
	MovieSubtitlesMoved int
	TVSubtitlesMoved    int
	ItemsSkipped        int
	Errors              int
}

// SubtitlesMoved returns the combined subtitle count.
func (s Stats) SubtitlesMoved() int {
	return s.MovieSubtitlesMoved + s.TVSubtitlesMoved
}

// ItemsMoved returns the combined per-item relocation count.
func (s Stats) ItemsMoved() int {
	return s.MoviesMoved + s.EpisodesMoved
}
