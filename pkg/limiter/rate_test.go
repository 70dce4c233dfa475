package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/legaldata/pkg/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalThrottle_ZeroDelayNeverBlocks(t *testing.T) {
	throttle := limiter.NewIntervalThrottle(0)

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, throttle.Wait(context.Background()))
	}

	assert.Less(t, time.Since(start), 50*time.Millisecond)
	assert.Equal(t, time.Duration(0), throttle.Delay())
}

func TestIntervalThrottle_FirstWaitPauses(t *testing.T) {
	delay := 40 * time.Millisecond
	throttle := limiter.NewIntervalThrottle(delay)

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), delay-5*time.Millisecond)
	assert.Equal(t, delay, throttle.Delay())
}

func TestIntervalThrottle_SpacesConsecutiveWaits(t *testing.T) {
	delay := 30 * time.Millisecond
	throttle := limiter.NewIntervalThrottle(delay)

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.Wait(context.Background()))
	}

	assert.GreaterOrEqual(t, time.Since(start), 3*delay-10*time.Millisecond)
}

func TestIntervalThrottle_SlowFetchStillPausesFullDelay(t *testing.T) {
	delay := 60 * time.Millisecond
	throttle := limiter.NewIntervalThrottle(delay)

	require.NoError(t, throttle.Wait(context.Background()))

	// a download that outlasts the delay
	time.Sleep(delay + delay/2)

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), delay-5*time.Millisecond)
}

func TestIntervalThrottle_PartialRefillStillPausesFullDelay(t *testing.T) {
	delay := 60 * time.Millisecond
	throttle := limiter.NewIntervalThrottle(delay)

	require.NoError(t, throttle.Wait(context.Background()))

	// a fetch shorter than the delay leaves a partly refilled bucket
	time.Sleep(delay / 2)

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))
	assert.GreaterOrEqual(t, time.Since(start), delay-5*time.Millisecond)
}

func TestIntervalThrottle_CancelledContext(t *testing.T) {
	throttle := limiter.NewIntervalThrottle(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := throttle.Wait(ctx)
	assert.Error(t, err)
}
