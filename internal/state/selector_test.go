package state

import (
	"errors"
	"fmt"
	"testing"
)

func TestSelectVideoNeverRepeatsUntilReset(t *testing.T) {
	s := openStore(t)
	candidates := []string{"url1", "url2", "url3", "url4"}

	seen := make(map[string]bool)
	for i := 0; i < len(candidates); i++ {
		id, err := s.SelectVideo("topic", "song", candidates)
		if err != nil {
			t.Fatalf("SelectVideo() #%d error = %v", i, err)
		}
		if seen[id] {
			t.Fatalf("SelectVideo() returned %q twice before reset", id)
		}
		seen[id] = true
	}

	if len(seen) != len(candidates) {
		t.Errorf("distinct selections = %d, want %d", len(seen), len(candidates))
	}
}

func TestSelectVideoResetScenario(t *testing.T) {
	s := openStore(t)
	candidates := []string{"urlA", "urlB"}

	if err := s.MarkUsed(SetCombinations, CombinationKey("topic", "urlA", "songX")); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}

	got, err := s.SelectVideo("topic", "songX", candidates)
	if err != nil {
		t.Fatalf("SelectVideo() error = %v", err)
	}
	if got != "urlB" {
		t.Errorf("first selection = %q, want urlB", got)
	}

	got, err = s.SelectVideo("topic", "songX", candidates)
	if err != nil {
		t.Fatalf("SelectVideo() after exhaustion error = %v", err)
	}
	if got != "urlA" {
		t.Errorf("selection after reset = %q, want urlA", got)
	}
}

func TestSelectVideoMixedExhaustionResets(t *testing.T) {
	s := openStore(t)
	candidates := []string{"urlA", "urlB"}

	// urlA is blocked by its combination, urlB by its raw video ID.
	// Neither set alone covers the whole pool.
	if err := s.MarkUsed(SetCombinations, CombinationKey("topic", "urlA", "songX")); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if err := s.MarkUsed(SetVideos, "urlB"); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}

	got, err := s.SelectVideo("topic", "songX", candidates)
	if err != nil {
		t.Fatalf("SelectVideo() error = %v on a non-empty pool", err)
	}
	if got != "urlA" {
		t.Errorf("selection after mixed exhaustion = %q, want urlA", got)
	}
}

func TestSelectVideoEmptyPool(t *testing.T) {
	s := openStore(t)

	if _, err := s.SelectVideo("topic", "song", nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("SelectVideo(empty) error = %v, want ErrNoCandidates", err)
	}
}

func TestSelectVideoAvoidsVisualRepetitionAcrossAudio(t *testing.T) {
	s := openStore(t)
	candidates := []string{"url1", "url2"}

	first, err := s.SelectVideo("topic", "songA", candidates)
	if err != nil {
		t.Fatalf("SelectVideo() error = %v", err)
	}

	// Different audio pairing still avoids the already used clip.
	second, err := s.SelectVideo("topic", "songB", candidates)
	if err != nil {
		t.Fatalf("SelectVideo() error = %v", err)
	}
	if second == first {
		t.Errorf("same clip %q reused across audio pairings before reset", second)
	}
}

func TestSelectKeyExhaustionResets(t *testing.T) {
	s := openStore(t)
	candidates := []string{"t1", "t2"}

	for i := 0; i < 2; i++ {
		if _, err := s.SelectKey(SetFallbackTopics, candidates); err != nil {
			t.Fatalf("SelectKey() #%d error = %v", i, err)
		}
	}

	// Pool exhausted: the next request must reset and succeed with the
	// identical candidate list.
	got, err := s.SelectKey(SetFallbackTopics, candidates)
	if err != nil {
		t.Fatalf("SelectKey() after exhaustion error = %v", err)
	}
	if got != "t1" {
		t.Errorf("SelectKey() after reset = %q, want t1", got)
	}
}

func TestSelectKeyEmptyPool(t *testing.T) {
	s := openStore(t)
	if _, err := s.SelectKey(SetVoiceTopics, nil); !errors.Is(err, ErrNoCandidates) {
		t.Errorf("SelectKey(empty) error = %v, want ErrNoCandidates", err)
	}
}

func TestSelectVideoLargePoolUniqueness(t *testing.T) {
	s := openStore(t)

	var candidates []string
	for i := 0; i < 20; i++ {
		candidates = append(candidates, fmt.Sprintf("url%02d", i))
	}

	returned := make([]string, 0, 20)
	since := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, err := s.SelectVideo("subject", "audio", candidates)
		if err != nil {
			t.Fatalf("SelectVideo() error = %v", err)
		}
		returned = append(returned, id)
		since[id] = true
	}

	if len(since) != len(returned) {
		t.Errorf("duplicates returned before reset: %d distinct of %d", len(since), len(returned))
	}
}
