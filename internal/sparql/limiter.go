package sparql

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

type limiter interface {
	Wait(ctx context.Context) error
}

type limiterAdapter struct {
	limiter *rate.Limiter
}

// newIntervalLimiter allows one query per interval. A non-positive interval
// disables limiting.
func newIntervalLimiter(interval time.Duration) limiter {
	if interval <= 0 {
		return &limiterAdapter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &limiterAdapter{
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

func (l *limiterAdapter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
