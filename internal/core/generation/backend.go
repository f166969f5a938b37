package generation

import "context"

// Backend produces the raw reply for one chunk. Implementations may fail for
// any reason; callers treat a failure like an unparseable reply.
type Backend interface {
	Generate(ctx context.Context, prompt Prompt, cardCount int) (string, error)
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, prompt Prompt, cardCount int) (string, error)

func (f BackendFunc) Generate(ctx context.Context, prompt Prompt, cardCount int) (string, error) {
	return f(ctx, prompt, cardCount)
}
