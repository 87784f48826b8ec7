// Package script turns a topic into narration text through a chain of
// language model backends.
package script

import (
	"fmt"
	"math"
	"strings"
)

// wordsPerSecond is the narration pacing assumption used to size scripts:
// 150 spoken words per minute.
const wordsPerSecond = 2.5

// Request describes one script to generate.
type Request struct {
	Topic    string
	Duration int // target narration length in seconds
	Language string
	Dialogue bool     // multi-speaker format
	Speakers []string // cast names when Dialogue is set
}

// TargetWordCount converts a duration in seconds into the word budget handed
// to the model.
func TargetWordCount(seconds int) int {
	return int(math.Round(float64(seconds) * wordsPerSecond))
}

// IsNarrative reports whether a topic reads like a story rather than a fact
// piece; narrative topics get the multi-speaker dialogue treatment.
func IsNarrative(topic string) bool {
	lower := strings.ToLower(topic)
	for _, keyword := range []string{"story", "tale", "saga", "anime", "cartoon", "drama"} {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// GenerationError reports that every backend in the chain failed. It keeps
// the per-backend errors for the log.
type GenerationError struct {
	Errors []error
}

func (e *GenerationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("all script backends failed: %s", strings.Join(parts, "; "))
}
