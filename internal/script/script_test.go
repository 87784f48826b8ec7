package script

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"reelforge/pkg/prompts"
)

type stubGenerator struct {
	name string
	text string
	err  error
}

func (s *stubGenerator) Name() string { return s.name }

func (s *stubGenerator) Generate(ctx context.Context, req Request) (string, error) {
	return s.text, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTargetWordCount(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    int
	}{
		{name: "youtubeShort", seconds: 60, want: 150},
		{name: "instagramReel", seconds: 30, want: 75},
		{name: "oddDuration", seconds: 45, want: 113},
		{name: "zero", seconds: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TargetWordCount(tt.seconds); got != tt.want {
				t.Errorf("TargetWordCount(%d) = %d, want %d", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestIsNarrative(t *testing.T) {
	tests := []struct {
		topic string
		want  bool
	}{
		{topic: "The Story of the First Computer", want: true},
		{topic: "A folk tale from Rajasthan", want: true},
		{topic: "Best anime of the decade", want: true},
		{topic: "Family drama at the wedding", want: true},
		{topic: "quantum computing explained", want: false},
		{topic: "History of tea", want: false},
	}

	for _, tt := range tests {
		if got := IsNarrative(tt.topic); got != tt.want {
			t.Errorf("IsNarrative(%q) = %v, want %v", tt.topic, got, tt.want)
		}
	}
}

func TestRenderPromptDialogueSpeakerMinimum(t *testing.T) {
	p, err := prompts.Load()
	if err != nil {
		t.Fatalf("load prompts: %v", err)
	}

	_, prompt, err := renderPrompt(p, Request{
		Topic:    "the tale of the moon rabbit",
		Duration: 60,
		Language: "en",
		Dialogue: true,
	})
	if err != nil {
		t.Fatalf("renderPrompt() error = %v", err)
	}

	if !strings.Contains(prompt, "at least 3 recurring characters") {
		t.Errorf("dialogue prompt missing three-speaker minimum:\n%s", prompt)
	}
	if strings.Contains(prompt, "characters: ") {
		t.Errorf("dialogue prompt has a dangling speaker list separator:\n%s", prompt)
	}
}

func TestChainFirstSuccessWins(t *testing.T) {
	chain := NewChain(discardLogger(),
		&stubGenerator{name: "primary", text: "primary script"},
		&stubGenerator{name: "fallback", text: "fallback script"},
	)

	got, err := chain.Generate(context.Background(), Request{Topic: "tea", Duration: 60})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "primary script" {
		t.Errorf("Generate() = %q, want primary backend output", got)
	}
}

func TestChainFallsBack(t *testing.T) {
	chain := NewChain(discardLogger(),
		&stubGenerator{name: "primary", err: errors.New("quota exceeded")},
		&stubGenerator{name: "fallback", text: "fallback script"},
	)

	got, err := chain.Generate(context.Background(), Request{Topic: "tea", Duration: 60})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "fallback script" {
		t.Errorf("Generate() = %q, want fallback backend output", got)
	}
}

func TestChainAllFail(t *testing.T) {
	chain := NewChain(discardLogger(),
		&stubGenerator{name: "primary", err: errors.New("quota exceeded")},
		&stubGenerator{name: "fallback", err: errors.New("rate limited")},
	)

	_, err := chain.Generate(context.Background(), Request{Topic: "tea", Duration: 60})

	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("Generate() error = %T, want *GenerationError", err)
	}
	if len(genErr.Errors) != 2 {
		t.Errorf("GenerationError holds %d errors, want 2", len(genErr.Errors))
	}
	for _, substr := range []string{"primary", "quota exceeded", "fallback", "rate limited"} {
		if !strings.Contains(genErr.Error(), substr) {
			t.Errorf("GenerationError message %q missing %q", genErr.Error(), substr)
		}
	}
}

func TestChainStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fallback := &stubGenerator{name: "fallback", text: "should not run"}
	chain := NewChain(discardLogger(),
		&stubGenerator{name: "primary", err: errors.New("boom")},
		fallback,
	)

	_, err := chain.Generate(ctx, Request{Topic: "tea", Duration: 60})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Generate() error = %v, want context.Canceled", err)
	}
}
