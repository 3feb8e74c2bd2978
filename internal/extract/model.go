package extract

import (
	"context"
	"errors"
)

// Model is the generative model behind extraction: a prompt goes in, the
// model's raw text reply comes out.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(ctx context.Context, prompt string) (string, error)

func (f ModelFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

var (
	ErrNoInput          = errors.New("no text or supported file provided")
	ErrEmptyReply       = errors.New("model returned an empty response")
	ErrBadReply         = errors.New("failed to parse AI response")
	ErrModelRateLimited = errors.New("model rate limit exceeded")
	ErrModelUnavailable = errors.New("model is not configured")
)

// RetryAfterSeconds is suggested to clients when the model rate limits us.
const RetryAfterSeconds = 60
