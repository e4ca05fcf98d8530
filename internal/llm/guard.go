package llm

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ErrCircuitOpen is returned while the breaker rejects calls after repeated
// upstream failures.
var ErrCircuitOpen = errors.New("llm: circuit open")

// GuardOptions tunes the breaker and limiter around a Client.
type GuardOptions struct {
	// RequestsPerSecond caps outgoing chat calls; zero disables limiting.
	RequestsPerSecond float64
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Zero means 5.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open. Zero means 30s.
	OpenTimeout time.Duration
}

// Guarded wraps a Client with a rate limiter and a circuit breaker so that a
// failing endpoint is not hammered by repeated report requests.
type Guarded struct {
	inner   Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewGuarded builds a Guarded client.
func NewGuarded(inner Client, opts GuardOptions) *Guarded {
	threshold := opts.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	timeout := opts.OpenTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	g := &Guarded{inner: inner}
	if opts.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about upstream health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return g
}

func (g *Guarded) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return openai.ChatCompletionResponse{}, err
		}
	}
	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.inner.CreateChatCompletion(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return openai.ChatCompletionResponse{}, ErrCircuitOpen
		}
		return openai.ChatCompletionResponse{}, err
	}
	return out.(openai.ChatCompletionResponse), nil
}

// ListModels forwards to the inner client when it supports listing.
func (g *Guarded) ListModels(ctx context.Context) (openai.ModelsList, error) {
	if ml, ok := g.inner.(ModelLister); ok {
		return ml.ListModels(ctx)
	}
	return openai.ModelsList{}, errors.New("llm: model listing not supported")
}

// State reports the breaker state, for logs and tests.
func (g *Guarded) State() gobreaker.State { return g.breaker.State() }
