package script

import "context"

// Generator produces narration text for a request. Implementations return the
// raw model output; dialogue parsing happens downstream.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
	Name() string
}
