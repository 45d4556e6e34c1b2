package dataset

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/couchcryptid/streamflow-animator/internal/domain"
)

// RateLimitedLoader wraps a Loader so bursts of resample requests cannot
// overwhelm the dataset service.
type RateLimitedLoader struct {
	inner   Loader
	limiter *rate.Limiter
}

// NewRateLimitedLoader allows rps loads per second (fractional for slower
// rates) with the given burst.
func NewRateLimitedLoader(inner Loader, rps float64, burst int) *RateLimitedLoader {
	return &RateLimitedLoader{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Load waits for limiter permission, then forwards to the wrapped loader.
func (r *RateLimitedLoader) Load(ctx context.Context, interval int) (domain.Dataset, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return domain.Dataset{}, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.inner.Load(ctx, interval)
}
