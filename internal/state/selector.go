package state

import "errors"

// ErrNoCandidates reports a selection request with an empty candidate pool.
// An empty pool is a hard failure, never a reset trigger.
var ErrNoCandidates = errors.New("no candidates available")

// SelectVideo picks the first candidate, in provider rank order, whose
// combination key and raw video identifier are both unused. The winner is
// marked in both sets and persisted before it is returned. When the pool is
// exhausted, every set that rejected a candidate is cleared and the request
// is retried exactly once; since each blocked candidate was held back only
// by sets that just got cleared, the retry cannot exhaust again.
func (s *Store) SelectVideo(subject, audioID string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	if id, ok := s.pickVideo(subject, audioID, candidates); ok {
		return id, s.markVideo(subject, audioID, id)
	}

	combinationsBlocked, videosBlocked := s.blockingSets(subject, audioID, candidates)
	if combinationsBlocked {
		if err := s.Reset(SetCombinations); err != nil {
			return "", err
		}
	}
	if videosBlocked {
		if err := s.Reset(SetVideos); err != nil {
			return "", err
		}
	}

	id, ok := s.pickVideo(subject, audioID, candidates)
	if !ok {
		return "", ErrNoCandidates
	}
	return id, s.markVideo(subject, audioID, id)
}

// SelectKey is the single-set variant used for topic pools: first unused
// candidate wins and is persisted; exhaustion clears the set and retries once.
func (s *Store) SelectKey(set string, candidates []string) (string, error) {
	if len(candidates) == 0 {
		return "", ErrNoCandidates
	}

	for _, c := range candidates {
		if !s.Used(set, c) {
			return c, s.MarkUsed(set, c)
		}
	}

	if err := s.Reset(set); err != nil {
		return "", err
	}
	return candidates[0], s.MarkUsed(set, candidates[0])
}

func (s *Store) pickVideo(subject, audioID string, candidates []string) (string, bool) {
	for _, id := range candidates {
		if !s.Used(SetCombinations, CombinationKey(subject, id, audioID)) && !s.Used(SetVideos, id) {
			return id, true
		}
	}
	return "", false
}

func (s *Store) markVideo(subject, audioID, id string) error {
	if err := s.MarkUsed(SetCombinations, CombinationKey(subject, id, audioID)); err != nil {
		return err
	}
	return s.MarkUsed(SetVideos, id)
}

// blockingSets reports which sets rejected at least one candidate. A pool
// can be exhausted by a mix of the two, with neither set covering every
// candidate on its own.
func (s *Store) blockingSets(subject, audioID string, candidates []string) (combinations, videos bool) {
	for _, id := range candidates {
		if s.Used(SetCombinations, CombinationKey(subject, id, audioID)) {
			combinations = true
		}
		if s.Used(SetVideos, id) {
			videos = true
		}
	}
	return combinations, videos
}
