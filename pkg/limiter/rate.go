package limiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Throttle
// Courtesy delay toward an origin server.
// Responsibilities:
// - Pause the caller after a request that actually went to the network
// - Never pause for work served from the local cache (callers simply do not call Wait)
// - Honour context cancellation while waiting
type Throttle interface {
	Wait(ctx context.Context) error
	Delay() time.Duration
}

// IntervalThrottle pauses for the full delay on every Wait, measured from
// the moment Wait is called. Time spent fetching before the call does not
// count toward the pause.
type IntervalThrottle struct {
	limiter *rate.Limiter
	delay   time.Duration
}

func NewIntervalThrottle(delay time.Duration) *IntervalThrottle {
	if delay <= 0 {
		return &IntervalThrottle{
			limiter: rate.NewLimiter(rate.Inf, 1),
		}
	}
	return &IntervalThrottle{
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		delay:   delay,
	}
}

func (t *IntervalThrottle) Wait(ctx context.Context) error {
	if t.delay > 0 {
		t.drain(time.Now())
	}
	return t.limiter.Wait(ctx)
}

// drain empties the bucket at now, including any fraction of a token that
// refilled while the caller was fetching. Shrinking the burst to zero caps
// the accrued tokens at zero; restoring it keeps Wait able to reserve.
func (t *IntervalThrottle) drain(now time.Time) {
	t.limiter.SetBurstAt(now, 0)
	t.limiter.SetBurstAt(now, 1)
}

func (t *IntervalThrottle) Delay() time.Duration {
	return t.delay
}
