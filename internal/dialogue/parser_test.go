package dialogue

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLines int
		wantFirst Line
		wantLast  Line
	}{
		{
			name:      "singleLine",
			input:     "Host: Hello world",
			wantLines: 1,
			wantFirst: Line{Speaker: "Host", Text: "Hello world"},
			wantLast:  Line{Speaker: "Host", Text: "Hello world"},
		},
		{
			name:      "multipleLines",
			input:     "Host: First\nGuest: Second\nHost: Third",
			wantLines: 3,
			wantFirst: Line{Speaker: "Host", Text: "First"},
			wantLast:  Line{Speaker: "Host", Text: "Third"},
		},
		{
			name:      "blankRowsSkipped",
			input:     "Host: Hello\n\nGuest: World\n\n",
			wantLines: 2,
			wantFirst: Line{Speaker: "Host", Text: "Hello"},
			wantLast:  Line{Speaker: "Guest", Text: "World"},
		},
		{
			name:      "surroundingWhitespace",
			input:     "  Host  :  Hello world  \n  Guest:Goodbye  ",
			wantLines: 2,
			wantFirst: Line{Speaker: "Host", Text: "Hello world"},
			wantLast:  Line{Speaker: "Guest", Text: "Goodbye"},
		},
		{
			name:      "emptyInput",
			input:     "",
			wantLines: 0,
		},
		{
			name:      "proseWithoutSpeakers",
			input:     "This is not a dialogue\nNeither is this",
			wantLines: 0,
		},
		{
			name:      "boldSpeakerNames",
			input:     "**Host:** Welcome back\n**Guest**: Glad to be here",
			wantLines: 2,
			wantFirst: Line{Speaker: "Host", Text: "Welcome back"},
			wantLast:  Line{Speaker: "Guest", Text: "Glad to be here"},
		},
		{
			name:      "markdownFenceSkipped",
			input:     "```\nHost: Inside fence marker still parses\n```",
			wantLines: 1,
			wantFirst: Line{Speaker: "Host", Text: "Inside fence marker still parses"},
			wantLast:  Line{Speaker: "Host", Text: "Inside fence marker still parses"},
		},
		{
			name:      "stageDirectionsSkipped",
			input:     "(Scene opens)\nHost: Hello\n[Thunder]\nGuest: Hi\nHost: (sighs deeply)",
			wantLines: 2,
			wantFirst: Line{Speaker: "Host", Text: "Hello"},
			wantLast:  Line{Speaker: "Guest", Text: "Hi"},
		},
		{
			name:      "emphasisStrippedFromText",
			input:     "Host: This is *very* important_",
			wantLines: 1,
			wantFirst: Line{Speaker: "Host", Text: "This is very important"},
			wantLast:  Line{Speaker: "Host", Text: "This is very important"},
		},
		{
			name:      "colonInsideUtterance",
			input:     "Host: The time is 10:30 sharp",
			wantLines: 1,
			wantFirst: Line{Speaker: "Host", Text: "The time is 10:30 sharp"},
			wantLast:  Line{Speaker: "Host", Text: "The time is 10:30 sharp"},
		},
		{
			name:      "multiWordSpeaker",
			input:     "The Host: Welcome everyone\nThe Guest: Thanks",
			wantLines: 2,
			wantFirst: Line{Speaker: "The Host", Text: "Welcome everyone"},
			wantLast:  Line{Speaker: "The Guest", Text: "Thanks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transcript := Parse(tt.input)

			if len(transcript.Lines) != tt.wantLines {
				t.Fatalf("Parse() got %d lines, want %d", len(transcript.Lines), tt.wantLines)
			}
			if tt.wantLines > 0 {
				if transcript.Lines[0] != tt.wantFirst {
					t.Errorf("first line = %+v, want %+v", transcript.Lines[0], tt.wantFirst)
				}
				if transcript.Lines[len(transcript.Lines)-1] != tt.wantLast {
					t.Errorf("last line = %+v, want %+v", transcript.Lines[len(transcript.Lines)-1], tt.wantLast)
				}
			}
		})
	}
}

func TestTranscriptSpeakers(t *testing.T) {
	transcript := Parse("Anna: one\nBen: two\nAnna: three\nCara: four")

	got := transcript.Speakers()
	want := []string{"Anna", "Ben", "Cara"}

	if len(got) != len(want) {
		t.Fatalf("Speakers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Speakers()[%d] = %q, want %q (first-appearance order)", i, got[i], want[i])
		}
	}
}

func TestTranscriptFullText(t *testing.T) {
	transcript := Parse("Anna: Hello there.\nBen: General greeting.")
	if got, want := transcript.FullText(), "Hello there. General greeting."; got != want {
		t.Errorf("FullText() = %q, want %q", got, want)
	}
}

func TestTranscriptWordCount(t *testing.T) {
	transcript := Parse("Anna: one two three\nBen: four five")
	if got := transcript.WordCount(); got != 5 {
		t.Errorf("WordCount() = %d, want 5", got)
	}
}

func TestTranscriptIsEmpty(t *testing.T) {
	if !Parse("no speakers here").IsEmpty() {
		t.Error("IsEmpty() = false for prose input, want true")
	}
	if Parse("A: hi").IsEmpty() {
		t.Error("IsEmpty() = true for valid dialogue, want false")
	}
}
