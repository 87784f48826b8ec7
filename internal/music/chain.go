package music

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries each source in order until one produces a track.
type Chain struct {
	sources []Source
	logger  *slog.Logger
}

func NewChain(logger *slog.Logger, sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  logger,
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Acquire(ctx context.Context, cycle int64, dir string) (*Track, error) {
	if len(c.sources) == 0 {
		return nil, fmt.Errorf("no music sources configured")
	}

	var lastErr error
	for _, source := range c.sources {
		track, err := source.Acquire(ctx, cycle, dir)
		if err == nil {
			return track, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("music source failed", "source", source.Name(), "error", err)
		lastErr = err
	}

	return nil, fmt.Errorf("all music sources failed: %w", lastErr)
}
