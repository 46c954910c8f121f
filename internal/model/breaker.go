package model

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/vozlegal/intake/internal/errors"
	"github.com/vozlegal/intake/internal/model/contract"
)

// breakerProvider wraps a Provider with a circuit breaker. When the
// provider fails repeatedly the circuit opens and calls fail fast
// without reaching it, so a dead upstream does not absorb the whole
// fallback budget on every request.
type breakerProvider struct {
	inner   Provider
	breaker *gobreaker.CircuitBreaker[*contract.CompletionResponse]
}

func newBreakerProvider(inner Provider, maxRequests int, timeout time.Duration, consecutiveFailures int) *breakerProvider {
	if maxRequests < 1 {
		maxRequests = 1
	}
	if consecutiveFailures < 1 {
		consecutiveFailures = 1
	}

	cb := gobreaker.NewCircuitBreaker[*contract.CompletionResponse](gobreaker.Settings{
		Name:        "model:" + inner.Name(),
		MaxRequests: uint32(maxRequests),
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(consecutiveFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return &breakerProvider{inner: inner, breaker: cb}
}

func (p *breakerProvider) Generate(ctx context.Context, req contract.CompletionRequest) (*contract.CompletionResponse, error) {
	resp, err := p.breaker.Execute(func() (*contract.CompletionResponse, error) {
		return p.inner.Generate(ctx, req)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return nil, errors.WrapWithCategory(err, fmt.Sprintf("provider %s circuit open", p.inner.Name()), errors.ErrTransient)
	}
	return resp, err
}

// Embed bypasses the breaker: knowledge lookups are low-volume and a
// failed embedding already degrades gracefully at the call site.
func (p *breakerProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	return p.inner.Embed(ctx, text)
}

func (p *breakerProvider) Name() string {
	return p.inner.Name()
}

func (p *breakerProvider) Health(ctx context.Context) error {
	if p.breaker.State() == gobreaker.StateOpen {
		return errors.Transient(fmt.Sprintf("provider %s circuit open", p.inner.Name()))
	}
	return p.inner.Health(ctx)
}

func (p *breakerProvider) State() gobreaker.State {
	return p.breaker.State()
}
