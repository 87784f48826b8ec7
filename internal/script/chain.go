package script

import (
	"context"
	"fmt"
	"log/slog"
)

// Chain tries each generator in order and returns the first successful
// script. When every backend fails the combined failure is returned as a
// *GenerationError.
type Chain struct {
	generators []Generator
	logger     *slog.Logger
}

func NewChain(logger *slog.Logger, generators ...Generator) *Chain {
	return &Chain{
		generators: generators,
		logger:     logger,
	}
}

func (c *Chain) Name() string { return "chain" }

func (c *Chain) Generate(ctx context.Context, req Request) (string, error) {
	if len(c.generators) == 0 {
		return "", fmt.Errorf("no script backends configured")
	}

	var failures []error
	for _, gen := range c.generators {
		text, err := gen.Generate(ctx, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		c.logger.Warn("script backend failed", "backend", gen.Name(), "error", err)
		failures = append(failures, fmt.Errorf("%s: %w", gen.Name(), err))
	}

	return "", &GenerationError{Errors: failures}
}
