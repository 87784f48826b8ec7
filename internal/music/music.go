// Package music acquires background tracks for reels from online catalogues,
// with a local cache of previously downloaded audio as the last resort.
package music

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Track is an acquired background track. Path points at a local audio file;
// ID is the stable identifier the dedup store tracks.
type Track struct {
	ID     string
	Title  string
	Artist string
	Path   string
}

// Source produces a track into dir. The cycle number lets sources rotate
// through their catalogue deterministically across pipeline runs.
type Source interface {
	Name() string
	Acquire(ctx context.Context, cycle int64, dir string) (*Track, error)
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// TrackID builds the dedup identifier for a track from its artist and title.
func TrackID(artist, title string) string {
	slug := strings.ToLower(fmt.Sprintf("%s %s", artist, title))
	slug = unsafeChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
