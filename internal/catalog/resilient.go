// AngelaMos | 2026
// resilient.go

package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/carterperez-dev/stackrec/internal/core"
	"github.com/carterperez-dev/stackrec/internal/metrics"
)

type ResilienceConfig struct {
	Name             string
	Retry            core.RetryPolicy
	BreakerFailures  uint32
	BreakerOpenAfter time.Duration
}

// ResilientProvider retries catalog reads with linear backoff behind a
// circuit breaker. The breaker sees one outcome per call, so
// BreakerFailures counts failed calls, not attempts. Exhausted retries and
// an open breaker both surface as core.ErrCollaboratorUnavailable.
type ResilientProvider struct {
	inner Provider
	cb    *gobreaker.CircuitBreaker[[]Product]
	retry core.RetryPolicy
}

func NewResilientProvider(
	inner Provider,
	cfg ResilienceConfig,
) *ResilientProvider {
	if cfg.Name == "" {
		cfg.Name = "catalog"
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerOpenAfter <= 0 {
		cfg.BreakerOpenAfter = 30 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]Product](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerOpenAfter,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		},
	})

	return &ResilientProvider{
		inner: inner,
		cb:    cb,
		retry: cfg.Retry,
	}
}

func (p *ResilientProvider) ListProducts(
	ctx context.Context,
	filter Filter,
) ([]Product, error) {
	products, err := p.cb.Execute(func() ([]Product, error) {
		var out []Product
		err := core.Retry(ctx, p.retry, func(ctx context.Context) error {
			var err error
			out, err = p.inner.ListProducts(ctx, filter)
			return err
		})
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf(
			"list products: %w: %w",
			core.ErrCollaboratorUnavailable,
			err,
		)
	}

	return products, nil
}

// MarkUnavailable forwards to the wrapped provider when it supports soft
// flags and is a no-op otherwise.
func (p *ResilientProvider) MarkUnavailable(
	ctx context.Context,
	ids []string,
) error {
	marker, ok := p.inner.(AvailabilityMarker)
	if !ok {
		return nil
	}
	return marker.MarkUnavailable(ctx, ids)
}

func (p *ResilientProvider) State() gobreaker.State {
	return p.cb.State()
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

var (
	_ Provider           = (*ResilientProvider)(nil)
	_ AvailabilityMarker = (*ResilientProvider)(nil)
)
