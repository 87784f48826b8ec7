package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return s
}

func TestMarkUsedAndUsed(t *testing.T) {
	s := openStore(t)

	key := CombinationKey("Topic", "vid1", "song1")
	if s.Used(SetCombinations, key) {
		t.Error("fresh store reports key as used")
	}
	if err := s.MarkUsed(SetCombinations, key); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if !s.Used(SetCombinations, key) {
		t.Error("marked key not reported as used")
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	key := CombinationKey("space", "vidA", "trackB")
	if err := s.MarkUsed(SetCombinations, key); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if err := s.MarkUsed(SetVoiceTopics, "space"); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if _, err := s.IncrementCounter(); err != nil {
		t.Fatalf("IncrementCounter() error = %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	if !reopened.Used(SetCombinations, key) {
		t.Error("combination lost across reopen")
	}
	if !reopened.Used(SetVoiceTopics, "space") {
		t.Error("voice topic lost across reopen")
	}
	if got := reopened.Counter(); got != 1 {
		t.Errorf("Counter() = %d, want 1", got)
	}
}

func TestCombinationFileSchema(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.MarkUsed(SetCombinations, CombinationKey("topic", "vid", "song")); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, SetCombinations+".json"))
	if err != nil {
		t.Fatalf("read combinations file: %v", err)
	}

	var tuples [][]string
	if err := json.Unmarshal(data, &tuples); err != nil {
		t.Fatalf("combinations file is not a list of tuples: %v", err)
	}
	if len(tuples) != 1 || len(tuples[0]) != 3 {
		t.Fatalf("tuples = %v, want one 3-tuple", tuples)
	}
}

func TestCombinationKeyNormalizesSubject(t *testing.T) {
	a := CombinationKey("  Space Facts ", "v", "a")
	b := CombinationKey("space facts", "v", "a")
	if a != b {
		t.Errorf("keys differ: %q vs %q", a, b)
	}
}

func TestCounterStartsAtZero(t *testing.T) {
	s := openStore(t)
	if got := s.Counter(); got != 0 {
		t.Errorf("Counter() = %d, want 0", got)
	}

	for i := int64(1); i <= 3; i++ {
		n, err := s.IncrementCounter()
		if err != nil {
			t.Fatalf("IncrementCounter() error = %v", err)
		}
		if n != i {
			t.Errorf("IncrementCounter() = %d, want %d", n, i)
		}
	}
}

func TestClear(t *testing.T) {
	s := openStore(t)

	if err := s.MarkUsed(SetVideos, "vid1"); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if _, err := s.IncrementCounter(); err != nil {
		t.Fatalf("IncrementCounter() error = %v", err)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if s.Used(SetVideos, "vid1") {
		t.Error("video still used after Clear")
	}
	if got := s.Counter(); got != 0 {
		t.Errorf("Counter() = %d after Clear, want 0", got)
	}
}
