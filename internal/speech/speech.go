// Package speech converts narration text into audio files through a chain of
// text-to-speech backends.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"reelforge/internal/dialogue"
)

// ErrQuotaExceeded marks a backend failure caused by an exhausted character
// quota. The chain treats it like any other failure, but callers can log it
// distinctly.
var ErrQuotaExceeded = errors.New("speech quota exceeded")

// Synthesizer renders text to an audio file at dest. The voice argument is an
// abstract index; each backend maps it onto its own voice pool, so a speaker
// keeps a consistent voice even when the chain falls back mid-dialogue.
type Synthesizer interface {
	Name() string
	Synthesize(ctx context.Context, text string, voice int, dest string) error
}

// Segment is one synthesized dialogue line.
type Segment struct {
	Speaker   string
	Text      string
	AudioPath string
}

// AssignVoices maps each speaker to a voice index by order of first
// appearance. The mapping is deterministic for a given transcript.
func AssignVoices(speakers []string) map[string]int {
	cast := make(map[string]int, len(speakers))
	for i, speaker := range speakers {
		cast[speaker] = i
	}
	return cast
}

// SynthesizeDialogue renders every line of a transcript as its own audio
// file under dir, keeping a stable voice per speaker.
func SynthesizeDialogue(ctx context.Context, synth Synthesizer, transcript *dialogue.Transcript, dir string) ([]Segment, error) {
	cast := AssignVoices(transcript.Speakers())

	segments := make([]Segment, 0, len(transcript.Lines))
	for i, line := range transcript.Lines {
		dest := fmt.Sprintf("%s/line_%03d.mp3", dir, i)
		if err := synth.Synthesize(ctx, line.Text, cast[line.Speaker], dest); err != nil {
			return nil, fmt.Errorf("synthesize line %d (%s): %w", i, line.Speaker, err)
		}
		segments = append(segments, Segment{
			Speaker:   line.Speaker,
			Text:      line.Text,
			AudioPath: dest,
		})
	}
	return segments, nil
}

const (
	filePollAttempts = 20
	filePollInterval = 250 * time.Millisecond
)

// waitForFile polls until path exists and is non-empty. Some backends report
// success slightly before the file is fully flushed to disk.
func waitForFile(ctx context.Context, path string) error {
	for attempt := 0; attempt < filePollAttempts; attempt++ {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(filePollInterval):
		}
	}
	return fmt.Errorf("audio file %s not ready after %d polls", path, filePollAttempts)
}
