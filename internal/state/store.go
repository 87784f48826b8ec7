package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

// Named sets tracked by the store. Combinations are persisted as 3-tuples,
// every other set as a flat list of strings.
const (
	SetCombinations   = "used_combinations"
	SetVideos         = "used_videos"
	SetVoiceTopics    = "used_voice_topics"
	SetFallbackTopics = "used_fallback_topics"
)

const counterFile = "reel_counter"

const keySeparator = "|"

// Store is the durable record of previously used combinations, identifiers and
// topics, plus the reel counter. Every mutation is flushed to disk immediately;
// a crash between mutation and flush loses at most the latest mark, which only
// risks one repeat, never a false "already used". Single writer process assumed.
type Store struct {
	dir string

	mu      sync.Mutex
	sets    map[string]map[string]bool
	counter int64
}

// Open loads all state files from dir, creating the directory if needed.
// Missing files start as empty sets and a zero counter.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	s := &Store{
		dir:  dir,
		sets: make(map[string]map[string]bool),
	}

	for _, name := range []string{SetCombinations, SetVideos, SetVoiceTopics, SetFallbackTopics} {
		set, err := s.loadSet(name)
		if err != nil {
			return nil, err
		}
		s.sets[name] = set
	}

	counter, err := s.loadCounter()
	if err != nil {
		return nil, err
	}
	s.counter = counter

	return s, nil
}

// CombinationKey builds the dedup key for one produced artifact's inputs.
func CombinationKey(subject, videoID, audioID string) string {
	return strings.Join([]string{strings.ToLower(strings.TrimSpace(subject)), videoID, audioID}, keySeparator)
}

func (s *Store) Used(set, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[set][key]
}

func (s *Store) MarkUsed(set, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sets[set] == nil {
		s.sets[set] = make(map[string]bool)
	}
	s.sets[set][key] = true
	return s.saveSet(set)
}

func (s *Store) Reset(set string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[set] = make(map[string]bool)
	return s.saveSet(set)
}

func (s *Store) Size(set string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sets[set])
}

func (s *Store) Counter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

// IncrementCounter advances the reel counter and persists it before returning.
func (s *Store) IncrementCounter() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	path := filepath.Join(s.dir, counterFile)
	if err := os.WriteFile(path, []byte(strconv.FormatInt(s.counter, 10)), 0644); err != nil {
		return 0, fmt.Errorf("persist counter: %w", err)
	}
	return s.counter, nil
}

// Clear resets every set and the counter. Used by the clear command.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.sets {
		s.sets[name] = make(map[string]bool)
		if err := s.saveSet(name); err != nil {
			return err
		}
	}

	s.counter = 0
	path := filepath.Join(s.dir, counterFile)
	if err := os.WriteFile(path, []byte("0"), 0644); err != nil {
		return fmt.Errorf("persist counter: %w", err)
	}
	return nil
}

func (s *Store) loadSet(name string) (map[string]bool, error) {
	set := make(map[string]bool)

	data, err := os.ReadFile(s.setPath(name))
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	if name == SetCombinations {
		var tuples [][]string
		if err := json.Unmarshal(data, &tuples); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		for _, t := range tuples {
			set[strings.Join(t, keySeparator)] = true
		}
		return set, nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	for _, k := range keys {
		set[k] = true
	}
	return set, nil
}

// saveSet rewrites the set's file. Combinations keep their 3-tuple schema on
// disk for compatibility with earlier state files. Caller holds the lock.
func (s *Store) saveSet(name string) error {
	var payload any

	if name == SetCombinations {
		tuples := make([][]string, 0, len(s.sets[name]))
		for key := range s.sets[name] {
			tuples = append(tuples, strings.Split(key, keySeparator))
		}
		payload = tuples
	} else {
		keys := make([]string, 0, len(s.sets[name]))
		for key := range s.sets[name] {
			keys = append(keys, key)
		}
		payload = keys
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.WriteFile(s.setPath(name), data, 0644); err != nil {
		return fmt.Errorf("persist %s: %w", name, err)
	}
	return nil
}

func (s *Store) loadCounter() (int64, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, counterFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}

	counter, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse counter: %w", err)
	}
	return counter, nil
}

func (s *Store) setPath(name string) string {
	return filepath.Join(s.dir, name+".json")
}
