package agent

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"medical-consult-assistant/internal/observability/metrics"
	"medical-consult-assistant/pkg/logging"
)

var tracer = otel.Tracer("medical-consult-assistant/internal/agent")

// RetryConfig bounds the rate-limit retry loop.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// RPS paces outbound calls; zero disables pacing.
	RPS   float64
	Burst int
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
		Burst:       1,
	}
}

// RetryingGenerator retries rate-limited calls with exponential backoff.
// Any other failure is returned on the first attempt.
type RetryingGenerator struct {
	next     Generator
	provider string
	cfg      RetryConfig
	limiter  *rate.Limiter
	logger   *logging.Logger
	metrics  *metrics.AssistantMetrics
	sleep    func(ctx context.Context, d time.Duration) error
	jitter   func() time.Duration
}

type RetryOption func(*RetryingGenerator)

func WithLogger(logger *logging.Logger) RetryOption {
	return func(g *RetryingGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

func WithMetrics(m *metrics.AssistantMetrics) RetryOption {
	return func(g *RetryingGenerator) { g.metrics = m }
}

// WithSleep replaces the context-aware timer used between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) RetryOption {
	return func(g *RetryingGenerator) {
		if fn != nil {
			g.sleep = fn
		}
	}
}

// WithJitter replaces the random [0,1s) jitter source.
func WithJitter(fn func() time.Duration) RetryOption {
	return func(g *RetryingGenerator) {
		if fn != nil {
			g.jitter = fn
		}
	}
}

func NewRetryingGenerator(provider string, next Generator, cfg RetryConfig, opts ...RetryOption) *RetryingGenerator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	g := &RetryingGenerator{
		next:     next,
		provider: provider,
		cfg:      cfg,
		logger:   logging.Default(),
		sleep:    sleepContext,
		jitter:   randomJitter,
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *RetryingGenerator) Generate(ctx context.Context, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "agent.Generate", trace.WithAttributes(
		attribute.String("llm.provider", g.provider),
		attribute.Int("llm.max_output_tokens", int(req.MaxOutputTokens)),
	))
	defer span.End()

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := g.backoff(attempt)
			g.logger.Warn("generation rate limited, backing off",
				"provider", g.provider,
				"attempt", attempt+1,
				"max_attempts", g.cfg.MaxAttempts,
				"delay_ms", delay.Milliseconds(),
			)
			if err := g.sleep(ctx, delay); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "cancelled during backoff")
				return "", fmt.Errorf("agent: backoff interrupted: %w", err)
			}
		}
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return "", fmt.Errorf("agent: pacing wait failed: %w", err)
			}
		}

		text, err := g.next.Generate(ctx, req)
		span.SetAttributes(attribute.Int("llm.attempts", attempt+1))
		if err == nil {
			g.metrics.ObserveGeneration(g.provider, "success")
			return text, nil
		}

		lastErr = err
		if !IsRateLimited(err) {
			g.metrics.ObserveGeneration(g.provider, "error")
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
			return "", err
		}
		g.metrics.ObserveGeneration(g.provider, "rate_limited")
	}

	span.SetStatus(codes.Error, "rate limit retries exhausted")
	return "", fmt.Errorf("agent: %d attempts exhausted: %w", g.cfg.MaxAttempts, lastErr)
}

// backoff returns BaseDelay*2^attempt plus jitter, capped at MaxDelay.
func (g *RetryingGenerator) backoff(attempt int) time.Duration {
	shift := attempt
	if shift > 30 {
		shift = 30
	}
	delay := g.cfg.BaseDelay*time.Duration(1<<uint(shift)) + g.jitter()
	if g.cfg.MaxDelay > 0 && delay > g.cfg.MaxDelay {
		delay = g.cfg.MaxDelay
	}
	return delay
}

func randomJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(time.Second)))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
