package polling_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"reelforge/internal/polling"
	"reelforge/internal/services"
)

func TestWaitReturnsOnDone(t *testing.T) {
	calls := 0
	err := polling.Wait(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		calls++
		return calls >= 3, nil
	})
	if err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 probes, got %d", calls)
	}
}

func TestWaitPropagatesProbeError(t *testing.T) {
	probeErr := errors.New("probe exploded")
	err := polling.Wait(context.Background(), time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return false, probeErr
	})
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected probe error, got %v", err)
	}
}

func TestWaitExpiresAsTimeout(t *testing.T) {
	err := polling.Wait(context.Background(), 5*time.Millisecond, 25*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout classification, got %v", err)
	}
}

func TestWaitStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := polling.Wait(ctx, time.Millisecond, time.Minute, func(context.Context) (bool, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}
