package compose

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const labelFontSize = 64

// SlideshowSegment is one dialogue line's visual and audio pairing.
type SlideshowSegment struct {
	ImagePath string
	AudioPath string
	Label     string // speaker name drawn over the image
}

// SlideshowRequest describes a per-line slideshow encode: one segment per
// dialogue line, each lasting exactly as long as its audio, concatenated in
// script order.
type SlideshowRequest struct {
	Segments   []SlideshowSegment
	WorkDir    string
	OutputPath string
}

// ComposeSlideshow encodes each segment, then concatenates them into the
// final timeline. Intermediate segment files live in the request's working
// directory and are left behind on failure for inspection.
func (e *Engine) ComposeSlideshow(ctx context.Context, req SlideshowRequest) error {
	if len(req.Segments) == 0 {
		return fmt.Errorf("no segments")
	}

	var segmentPaths []string
	for i, segment := range req.Segments {
		path := filepath.Join(req.WorkDir, fmt.Sprintf("segment_%03d.mp4", i))
		if err := e.encodeSegment(ctx, segment, path); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
		segmentPaths = append(segmentPaths, path)
	}

	return e.concatSegments(ctx, segmentPaths, req.WorkDir, req.OutputPath)
}

func (e *Engine) encodeSegment(ctx context.Context, segment SlideshowSegment, outputPath string) error {
	lineDur, err := e.Duration(ctx, segment.AudioPath)
	if err != nil {
		return fmt.Errorf("probe line audio: %w", err)
	}

	// The character image keeps its aspect ratio at a fixed height and is
	// centered on the output canvas; the speaker label goes above it.
	filter := fmt.Sprintf(
		"scale=-2:%d,pad=%d:%d:(ow-iw)/2:(oh-ih)/2:black,drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=3:x=(w-text_w)/2:y=h*0.12,fps=%d",
		e.height/2, e.width, e.height, escapeDrawtext(segment.Label), labelFontSize, e.fps,
	)

	args := []string{
		"-y",
		"-loop", "1",
		"-i", segment.ImagePath,
		"-i", segment.AudioPath,
		"-vf", filter,
		"-t", fmt.Sprintf("%.3f", lineDur),
		"-c:v", "libx264",
		"-preset", "slow",
		"-crf", "22",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-ar", "44100",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &Error{Stage: "slideshow segment", Output: string(output), Err: err}
	}
	return nil
}

func (e *Engine) concatSegments(ctx context.Context, segments []string, workDir, outputPath string) error {
	listPath := filepath.Join(workDir, "segments.txt")
	var list strings.Builder
	for _, segment := range segments {
		fmt.Fprintf(&list, "file '%s'\n", segment)
	}
	if err := os.WriteFile(listPath, []byte(list.String()), 0644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-movflags", "+faststart",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &Error{Stage: "slideshow concat", Output: string(output), Err: err}
	}

	if _, err := os.Stat(outputPath); err != nil {
		return fmt.Errorf("encoder reported success but output is missing: %w", err)
	}
	return nil
}

func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"'", "\\'",
		":", "\\:",
		"%", "\\%",
	)
	return replacer.Replace(text)
}
