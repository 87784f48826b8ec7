// Package compose drives the external encoder that turns downloaded assets
// into a finished reel.
package compose

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	defaultFFmpegPath  = "ffmpeg"
	defaultFFprobePath = "ffprobe"

	defaultWidth  = 1080
	defaultHeight = 1920
	defaultFPS    = 30

	// Ambiance gain relative to narration. Narration itself is never
	// attenuated.
	defaultMusicVolume = 0.2
)

// Error carries the encoder's diagnostic output verbatim. Encoder failures
// are fatal to the job; the working directory is preserved for inspection.
type Error struct {
	Stage  string
	Output string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s failed: %v, output: %s", e.Stage, e.Err, e.Output)
}

func (e *Error) Unwrap() error { return e.Err }

// Engine owns encoder invocations and the intermediate files they produce.
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	width       int
	height      int
	fps         int
	musicVolume float64
}

type Options struct {
	Resolution  string // "WIDTHxHEIGHT"
	FPS         int
	MusicVolume float64
}

func NewEngine(opts Options) *Engine {
	width, height := parseResolution(opts.Resolution)
	fps := opts.FPS
	if fps == 0 {
		fps = defaultFPS
	}
	volume := opts.MusicVolume
	if volume == 0 {
		volume = defaultMusicVolume
	}
	return &Engine{
		ffmpegPath:  defaultFFmpegPath,
		ffprobePath: defaultFFprobePath,
		width:       width,
		height:      height,
		fps:         fps,
		musicVolume: volume,
	}
}

func parseResolution(res string) (int, int) {
	parts := strings.SplitN(res, "x", 2)
	if len(parts) != 2 {
		return defaultWidth, defaultHeight
	}
	width, err1 := strconv.Atoi(parts[0])
	height, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		return defaultWidth, defaultHeight
	}
	return width, height
}

// targetDuration picks the final artifact length: the shortest of the visual
// length, audio length and requested duration. Zero values mean "no bound"
// (a looped visual, for instance).
func targetDuration(visual, audio, requested float64) float64 {
	target := 0.0
	for _, candidate := range []float64{visual, audio, requested} {
		if candidate <= 0 {
			continue
		}
		if target == 0 || candidate < target {
			target = candidate
		}
	}
	return target
}
