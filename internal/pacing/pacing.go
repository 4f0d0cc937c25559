// Package pacing spreads a batch of remote submissions across a time window.
//
// The delay between consecutive records is derived once per batch from the
// window length and the record count, assuming each remote call costs about
// one second:
//
//	delay = max(0, window - n*cost) / (n - 1)   for n > 1
//	delay = 0                                   otherwise
//
// Waits are interruptible so that a cancelled batch stops sleeping at once.
package pacing

import (
	"context"
	"time"
)

// AssumedCallCost is the time budgeted for each remote call when computing
// the inter-record delay.
const AssumedCallCost = time.Second

// ComputeDelay returns the pause to insert before each record of a batch of n
// records that should finish by end when started at start. The result is never
// negative; a window already in the past or too small yields zero.
func ComputeDelay(start, end time.Time, n int) time.Duration {
	if n <= 1 {
		return 0
	}

	window := end.Sub(start)
	remaining := window - time.Duration(n)*AssumedCallCost
	if remaining <= 0 {
		return 0
	}

	return remaining / time.Duration(n-1)
}

// Wait blocks for d. It returns true when the full delay elapsed and false when
// cancelled was closed or ctx ended first. A non-positive d still observes an
// already-closed cancelled channel.
func Wait(ctx context.Context, d time.Duration, cancelled <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-cancelled:
			return false
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-cancelled:
		return false
	case <-ctx.Done():
		return false
	}
}
