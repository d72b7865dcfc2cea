package directions

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

const (
	// DefaultMaxRetries is the number of retries after the initial attempt.
	DefaultMaxRetries = 3

	// DefaultRetryBaseDelay is the first retry delay; it doubles per attempt
	// (2s, 4s, 8s with the defaults).
	DefaultRetryBaseDelay = 2 * time.Second
)

// GatewayConfig holds configuration for the Gateway.
type GatewayConfig struct {
	// Provider executes individual leg requests (required).
	Provider Provider

	// Logger for gateway operations.
	Logger zerolog.Logger

	// MaxRetries is the retry budget per leg (optional, default 3).
	MaxRetries uint64

	// RetryBaseDelay is the initial backoff delay (optional, default 2s).
	RetryBaseDelay time.Duration
}

// Gateway wraps a Provider with the retry policy for leg fetches: rate-limit
// failures are retried with exponential backoff, every other failure
// propagates immediately.
type Gateway struct {
	provider   Provider
	logger     zerolog.Logger
	maxRetries uint64
	baseDelay  time.Duration
}

// NewGateway creates a Gateway around the given provider.
func NewGateway(cfg GatewayConfig) *Gateway {
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	baseDelay := cfg.RetryBaseDelay
	if baseDelay == 0 {
		baseDelay = DefaultRetryBaseDelay
	}

	return &Gateway{
		provider:   cfg.Provider,
		logger:     cfg.Logger,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// Name returns the underlying provider name.
func (g *Gateway) Name() string {
	return g.provider.Name()
}

// FetchLeg measures one leg, retrying rate-limited attempts up to the
// configured budget. Exhausting the budget surfaces the last rate-limit
// error; the caller decides whether that is fatal.
func (g *Gateway) FetchLeg(ctx context.Context, req LegRequest) (*Leg, error) {
	if err := ValidateCoordinate(req.From); err != nil {
		return nil, &Error{Provider: g.provider.Name(), Code: "INVALID_ORIGIN", Message: "invalid origin coordinates", Err: err}
	}
	if err := ValidateCoordinate(req.To); err != nil {
		return nil, &Error{Provider: g.provider.Name(), Code: "INVALID_DESTINATION", Message: "invalid destination coordinates", Err: err}
	}

	var leg *Leg

	operation := func() error {
		l, err := g.provider.FetchLeg(ctx, req)
		if err != nil {
			if IsRateLimit(err) {
				return err
			}
			// Anything that is not a rate-limit signal is terminal.
			return backoff.Permanent(err)
		}
		leg = l
		return nil
	}

	notify := func(err error, delay time.Duration) {
		g.logger.Warn().
			Err(err).
			Dur("retry_in", delay).
			Float64("from_lat", req.From.Lat).
			Float64("from_lon", req.From.Lon).
			Float64("to_lat", req.To.Lat).
			Float64("to_lon", req.To.Lon).
			Msg("rate limited by directions provider, backing off")
	}

	if err := backoff.RetryNotify(operation, g.retryPolicy(ctx), notify); err != nil {
		return nil, err
	}

	return leg, nil
}

// retryPolicy builds the per-leg backoff schedule: baseDelay doubling per
// attempt without jitter, capped at maxRetries retries.
func (g *Gateway) retryPolicy(ctx context.Context) backoff.BackOffContext {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.baseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = g.baseDelay << g.maxRetries
	bo.MaxElapsedTime = 0
	bo.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx)
}
