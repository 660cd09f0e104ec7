package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimited притормаживает вызовы провайдера до заданного QPS.
// Для вызывающего прозрачен: тот же Provider.
type RateLimited struct {
	inner   Provider
	limiter *rate.Limiter
}

func NewRateLimited(inner Provider, rps float64, burst int) *RateLimited {
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimited) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Generate(ctx, prompt, p)
}

func (r *RateLimited) Describe() Info { return r.inner.Describe() }

var _ Provider = (*RateLimited)(nil)
