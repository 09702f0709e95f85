package mediapath

import (
	"fmt"
	"regexp"
	"strconv"
)

var episodePattern = regexp.MustCompile(`(?i)s(\d{1,2})e(\d{1,2})`)

// ExtractEpisodeCode finds a season/episode marker in a filename and returns
// it in canonical SxxExx form ("s1e3" becomes "S01E03"). The second return is
// false when the filename carries no marker. Only the letter-digit-letter-digit
// shape matches; formats like "1x03" are deliberately not recognized.
func ExtractEpisodeCode(filename string) (string, bool) {
	match := episodePattern.FindStringSubmatch(filename)
	if match == nil {
		return "", false
	}
	season, err := strconv.Atoi(match[1])
	if err != nil {
		return "", false
	}
	episode, err := strconv.Atoi(match[2])
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("S%02dE%02d", season, episode), true
}
