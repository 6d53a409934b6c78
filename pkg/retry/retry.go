// Package retry provides retry strategies for failed operations.
package retry

import (
	"context"
	"math"
	"time"

	"go.llib.dev/testcase/clock"

	"go.llib.dev/hookit/pkg/zerokit"
)

type Strategy interface {
	// ShouldTry will tell if an attempt should be made after a given number of failed attempts.
	ShouldTry(ctx context.Context, failureCount int) bool
}

// ExponentialBackoff waits before answering whether a new attempt can be made.
// The waiting time is doubled for each failed attempt,
// which gives the remote system progressively more time to recover.
type ExponentialBackoff struct {
	// MaxRetries is the amount of retry attempts that are allowed before giving up.
	//
	// Default: 5
	MaxRetries int
	// BackoffDuration is the base duration used to calculate the exponential backoff wait time.
	//
	// Default: 1/2 time.Second
	BackoffDuration time.Duration
}

func (rs ExponentialBackoff) ShouldTry(ctx context.Context, failureCount int) bool {
	if rs.getMaxRetries() <= failureCount {
		return false
	}
	if failureCount == 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-clock.After(rs.backoffDurationFor(failureCount)):
		return true
	}
}

func (rs ExponentialBackoff) backoffDurationFor(failureCount int) time.Duration {
	backoffMultiplier := math.Pow(2, float64(failureCount-1))
	return time.Duration(backoffMultiplier) * rs.getBackoffDuration()
}

func (rs ExponentialBackoff) getBackoffDuration() time.Duration {
	return zerokit.Coalesce(rs.BackoffDuration, 500*time.Millisecond)
}

func (rs ExponentialBackoff) getMaxRetries() int {
	return zerokit.Coalesce(rs.MaxRetries, 5)
}
