package ai

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// NewLimiter returns a token bucket allowing rps requests per second with the
// given burst. A non-positive rps disables limiting.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Wait blocks until the limiter admits one call. Cancellation and deadline
// errors are reported as ProviderErrors for the named provider.
func Wait(ctx context.Context, limiter *rate.Limiter, provider string) error {
	if limiter == nil {
		return nil
	}
	if err := limiter.Wait(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewProviderErrorWithCause(ErrTypeTimeout, "rate limiter wait exceeded deadline", provider, err)
		}
		return NewProviderErrorWithCause(ErrTypeRateLimit, "rate limiter wait failed", provider, err)
	}
	return nil
}
