package trends

import (
	"context"
	"fmt"
	"log/slog"

	"reelforge/internal/state"
)

// Source resolves the topic for a production cycle. The live feed is
// preferred; the static table steps in when the feed fails, with its own
// recently-used exclusion so the channel does not repeat itself.
type Source struct {
	google     *GoogleClient
	store      *state.Store
	logger     *slog.Logger
	categories []Category
}

func NewSource(google *GoogleClient, store *state.Store, logger *slog.Logger, categories []Category) *Source {
	if len(categories) == 0 {
		categories = Categories()
	}
	return &Source{
		google:     google,
		store:      store,
		logger:     logger,
		categories: categories,
	}
}

// Next picks the cycle's topic. The category rotates with the cycle number.
// Voice-reel topics are deduplicated against the voice-topic set; music
// cycles take the top trending entry without touching that set, since the
// combination set already keeps their output varied. Fallback topics have
// their own set either way.
func (s *Source) Next(ctx context.Context, cycle int64, voiceReel bool) (Topic, error) {
	category := s.categories[int(cycle)%len(s.categories)]

	if s.google != nil {
		topics, err := s.google.Trending(ctx, category)
		if err == nil {
			if !voiceReel {
				return Topic{Title: topics[0].Title, Category: category}, nil
			}
			title, selectErr := s.store.SelectKey(state.SetVoiceTopics, titles(topics))
			if selectErr == nil {
				return Topic{Title: title, Category: category}, nil
			}
			err = selectErr
		}
		s.logger.Warn("trends feed unavailable, using fallback table", "category", string(category), "error", err)
	}

	pool := FallbackTopics(category)
	if len(pool) == 0 {
		return Topic{}, fmt.Errorf("no fallback topics for category %q", category)
	}
	title, err := s.store.SelectKey(state.SetFallbackTopics, titles(pool))
	if err != nil {
		return Topic{}, fmt.Errorf("select fallback topic: %w", err)
	}
	return Topic{Title: title, Category: category}, nil
}

func titles(topics []Topic) []string {
	names := make([]string, 0, len(topics))
	for _, topic := range topics {
		names = append(names, topic.Title)
	}
	return names
}
