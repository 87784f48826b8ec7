package music

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath = "ffmpeg"

	// Clips are cut from a fixed offset so a cached full-length track yields
	// the same excerpt every time, which keeps the dedup identifier honest.
	clipOffsetSeconds = 10
	clipLengthSeconds = 60
)

// LocalCache serves previously downloaded tracks when every online source is
// unavailable. A random cached file is clipped into dir with ffmpeg.
type LocalCache struct {
	cacheDir   string
	ffmpegPath string
}

func NewLocalCache(cacheDir string) *LocalCache {
	return &LocalCache{
		cacheDir:   cacheDir,
		ffmpegPath: defaultFFmpegPath,
	}
}

func (l *LocalCache) Name() string { return "local" }

func (l *LocalCache) Acquire(ctx context.Context, cycle int64, dir string) (*Track, error) {
	entries, err := os.ReadDir(l.cacheDir)
	if err != nil {
		return nil, fmt.Errorf("read music cache: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".mp3" || ext == ".m4a" || ext == ".wav" {
			files = append(files, entry.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("music cache %s is empty", l.cacheDir)
	}

	name := files[rand.Intn(len(files))]
	source := filepath.Join(l.cacheDir, name)
	id := strings.TrimSuffix(name, filepath.Ext(name))
	dest := filepath.Join(dir, id+"_clip.mp3")

	args := []string{
		"-y",
		"-ss", strconv.Itoa(clipOffsetSeconds),
		"-t", strconv.Itoa(clipLengthSeconds),
		"-i", source,
		"-acodec", "libmp3lame",
		dest,
	}
	cmd := exec.CommandContext(ctx, l.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("clip cached track: %w, output: %s", err, string(output))
	}

	return &Track{
		ID:   id,
		Path: dest,
	}, nil
}
