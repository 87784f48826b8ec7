// Package dialogue parses multi-speaker scripts produced by language models.
// The expected wire format is one "NAME: line" per row; anything else is
// treated as decoration and dropped.
package dialogue

import (
	"regexp"
	"strings"
)

// Line is a single utterance attributed to a named character.
type Line struct {
	Speaker string
	Text    string
}

// Transcript is an ordered sequence of parsed dialogue lines.
type Transcript struct {
	Lines []Line
}

var speakerPattern = regexp.MustCompile(`^\*{0,2}([A-Za-z][A-Za-z0-9 ]*?)\*{0,2}\s*:\s*(.+)$`)

// Parse extracts dialogue lines from raw model output. Blank rows, stage
// directions in parentheses or brackets, markdown fences and rows without a
// speaker prefix are skipped. Emphasis markers around speaker names and
// inside utterances are stripped.
func Parse(raw string) *Transcript {
	transcript := &Transcript{Lines: make([]Line, 0)}

	for _, row := range strings.Split(raw, "\n") {
		row = strings.TrimSpace(row)
		if row == "" || strings.HasPrefix(row, "```") {
			continue
		}
		if strings.HasPrefix(row, "(") || strings.HasPrefix(row, "[") {
			continue
		}

		matches := speakerPattern.FindStringSubmatch(row)
		if len(matches) != 3 {
			continue
		}

		text := strings.TrimSpace(matches[2])
		if strings.HasPrefix(text, "(") && strings.HasSuffix(text, ")") {
			continue
		}

		transcript.Lines = append(transcript.Lines, Line{
			Speaker: strings.TrimSpace(matches[1]),
			Text:    stripEmphasis(text),
		})
	}

	return transcript
}

func stripEmphasis(text string) string {
	for _, marker := range []string{"*", "_", "~"} {
		text = strings.ReplaceAll(text, marker, "")
	}
	return strings.TrimSpace(text)
}

// Speakers returns the distinct speaker names in order of first appearance.
// The order is the contract voice casting relies on.
func (t *Transcript) Speakers() []string {
	seen := make(map[string]bool)
	speakers := make([]string, 0)
	for _, line := range t.Lines {
		if !seen[line.Speaker] {
			seen[line.Speaker] = true
			speakers = append(speakers, line.Speaker)
		}
	}
	return speakers
}

// IsEmpty reports whether no dialogue lines survived parsing.
func (t *Transcript) IsEmpty() bool {
	return len(t.Lines) == 0
}

// FullText joins every utterance into one narration string, speakers omitted.
func (t *Transcript) FullText() string {
	parts := make([]string, 0, len(t.Lines))
	for _, line := range t.Lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, " ")
}

// WordCount counts spoken words across all lines, used for pacing checks.
func (t *Transcript) WordCount() int {
	total := 0
	for _, line := range t.Lines {
		total += len(strings.Fields(line.Text))
	}
	return total
}
