package agent

import "context"

// Request carries one prompt and its sampling parameters.
type Request struct {
	Prompt          string
	MaxOutputTokens int32
	Temperature     float32
	TopP            float32
	TopK            int32
	StopSequences   []string
}

// Generator produces text for a prompt. Implementations wrap backend
// failures in *GenerationError so callers can tell rate limits apart.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type disabled struct{}

// NewDisabled returns a Generator that always fails with ErrDisabled.
// The consultation flow answers from the local question pool instead.
func NewDisabled() Generator {
	return disabled{}
}

func (disabled) Generate(context.Context, Request) (string, error) {
	return "", ErrDisabled
}
