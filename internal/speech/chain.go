package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Chain tries each backend in order until one produces an audio file.
type Chain struct {
	backends []Synthesizer
	logger   *slog.Logger
}

func NewChain(logger *slog.Logger, backends ...Synthesizer) *Chain {
	return &Chain{
		backends: backends,
		logger:   logger,
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Synthesize(ctx context.Context, text string, voice int, dest string) error {
	if len(c.backends) == 0 {
		return fmt.Errorf("no speech backends configured")
	}

	var lastErr error
	for _, backend := range c.backends {
		err := backend.Synthesize(ctx, text, voice, dest)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrQuotaExceeded) {
			c.logger.Warn("speech backend quota exhausted", "backend", backend.Name())
		} else {
			c.logger.Warn("speech backend failed", "backend", backend.Name(), "error", err)
		}
		lastErr = err
	}

	return fmt.Errorf("all speech backends failed: %w", lastErr)
}
