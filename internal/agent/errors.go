package agent

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"
)

var (
	ErrRateLimited = errors.New("agent: rate limited")
	ErrNoContent   = errors.New("agent: backend returned no text")
	ErrDisabled    = errors.New("agent: generation disabled")
)

// GenerationError wraps a backend failure with its classification.
type GenerationError struct {
	Provider    string
	RateLimited bool
	Err         error
}

func (e *GenerationError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("agent: %s rate limited: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("agent: %s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool {
	return target == ErrRateLimited && e.RateLimited
}

func wrapError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &GenerationError{Provider: provider, RateLimited: IsRateLimited(err), Err: err}
}

var rateLimitMarkers = []string{"429", "quota", "rate limit", "resource exhausted", "resource_exhausted"}

// IsRateLimited reports whether err signals quota or rate exhaustion.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) && gErr.Code == http.StatusTooManyRequests {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
