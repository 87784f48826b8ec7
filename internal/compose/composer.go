package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Request describes one looped-background encode. NarrationPath may be empty
// for music-driven reels; MusicPath may be empty for narration without
// ambiance. At least one audio input is required.
type Request struct {
	VideoPath     string
	NarrationPath string
	MusicPath     string
	Duration      float64 // requested length in seconds; 0 means unbounded
	OutputPath    string
}

// Compose loops the background clip under the mixed audio track, scales it to
// the output canvas and trims the result to the shortest of audio length and
// requested duration. The narration track is mapped at unity gain; ambiance
// is mixed in at the configured low volume.
func (e *Engine) Compose(ctx context.Context, req Request) error {
	if req.NarrationPath == "" && req.MusicPath == "" {
		return fmt.Errorf("no audio input")
	}

	audioLen, err := e.primaryAudioDuration(ctx, req)
	if err != nil {
		return err
	}
	// The visual is looped, so it never bounds the artifact.
	target := targetDuration(0, audioLen, req.Duration)

	args := e.buildComposeArgs(req, target)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &Error{Stage: "compose", Output: string(output), Err: err}
	}

	if _, err := os.Stat(req.OutputPath); err != nil {
		return fmt.Errorf("encoder reported success but output is missing: %w", err)
	}
	return nil
}

func (e *Engine) primaryAudioDuration(ctx context.Context, req Request) (float64, error) {
	path := req.NarrationPath
	if path == "" {
		path = req.MusicPath
	}
	dur, err := e.Duration(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("probe audio: %w", err)
	}
	return dur, nil
}

func (e *Engine) buildComposeArgs(req Request, target float64) []string {
	args := []string{
		"-y",
		"-stream_loop", "-1",
		"-i", req.VideoPath,
	}

	scale := fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,fps=%d",
		e.width, e.height, e.width, e.height, e.fps,
	)

	switch {
	case req.NarrationPath != "" && req.MusicPath != "":
		args = append(args,
			"-i", req.NarrationPath,
			"-stream_loop", "-1",
			"-i", req.MusicPath,
			"-filter_complex", fmt.Sprintf(
				"[0:v]%s[vout];[2:a]volume=%g[amb];[1:a][amb]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[aout]",
				scale, e.musicVolume,
			),
			"-map", "[vout]",
			"-map", "[aout]",
		)
	case req.NarrationPath != "":
		args = append(args,
			"-i", req.NarrationPath,
			"-filter_complex", fmt.Sprintf("[0:v]%s[vout]", scale),
			"-map", "[vout]",
			"-map", "1:a",
		)
	default:
		// Music-driven reel: the song is the primary asset, full volume.
		args = append(args,
			"-stream_loop", "-1",
			"-i", req.MusicPath,
			"-filter_complex", fmt.Sprintf("[0:v]%s[vout]", scale),
			"-map", "[vout]",
			"-map", "1:a",
		)
	}

	args = append(args,
		"-t", fmt.Sprintf("%.3f", target),
		"-c:v", "libx264",
		"-preset", "slow",
		"-crf", "22",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		"-movflags", "+faststart",
		req.OutputPath,
	)
	return args
}
