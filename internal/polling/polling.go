// Package polling provides the bounded sleep-then-recheck primitive shared
// by the video generation wait and publisher media-processing waits.
package polling

import (
	"context"
	"errors"
	"time"

	"reelforge/internal/services"
)

// Probe reports whether the awaited condition has been reached. A non-nil
// error aborts the wait immediately.
type Probe func(ctx context.Context) (done bool, err error)

const (
	defaultInterval = 10 * time.Second
	defaultMaxWait  = 10 * time.Minute
)

// Wait invokes probe until it reports done, the context is cancelled, or
// maxWait elapses. The probe runs once immediately, then every interval.
// Expiry is reported as services.ErrTimeout so callers can distinguish it
// from upstream failures.
func Wait(ctx context.Context, interval, maxWait time.Duration, probe Probe) error {
	if probe == nil {
		return errors.New("polling: probe required")
	}
	if interval <= 0 {
		interval = defaultInterval
	}
	if maxWait <= 0 {
		maxWait = defaultMaxWait
	}
	if ctx == nil {
		ctx = context.Background()
	}

	deadline := time.Now().Add(maxWait)
	for {
		done, err := probe(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if remaining := time.Until(deadline); remaining <= 0 {
			return services.Wrap(services.ErrTimeout, "polling", "wait", "condition not met within "+maxWait.String(), nil)
		} else if remaining < interval {
			// Final short sleep so the last probe lands at the deadline.
			interval = remaining
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
