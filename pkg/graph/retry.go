// Copyright 2025 The Loomgraph Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graph

import (
	"math"
	"time"
)

// RetryKind selects the shape of a RetryPolicy.
type RetryKind int

const (
	RetryNone RetryKind = iota
	RetryFixed
	RetryExponential
)

// RetryPolicy describes how a node's failed Run should be retried.
type RetryPolicy struct {
	Kind RetryKind

	MaxAttempts int

	// Interval is the fixed delay for RetryFixed.
	Interval time.Duration

	// InitialInterval, MaxInterval and Multiplier configure RetryExponential:
	// delay(n) = min(InitialInterval * Multiplier^n, MaxInterval).
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

// NoRetry returns a policy that never retries.
func NoRetry() RetryPolicy {
	return RetryPolicy{Kind: RetryNone}
}

// FixedRetry returns a policy retrying up to maxAttempts times with a
// constant interval between attempts.
func FixedRetry(maxAttempts int, interval time.Duration) RetryPolicy {
	return RetryPolicy{Kind: RetryFixed, MaxAttempts: maxAttempts, Interval: interval}
}

// ExponentialRetry returns a policy retrying up to maxAttempts times with
// exponentially increasing delay, capped at maxInterval.
func ExponentialRetry(maxAttempts int, initialInterval, maxInterval time.Duration, multiplier float64) RetryPolicy {
	return RetryPolicy{
		Kind:            RetryExponential,
		MaxAttempts:     maxAttempts,
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		Multiplier:      multiplier,
	}
}

// ShouldRetry reports whether another attempt should be made after the
// given (zero-based) attempt number has failed.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	switch p.Kind {
	case RetryFixed, RetryExponential:
		return attempt < p.MaxAttempts
	default:
		return false
	}
}

// Delay returns how long to wait before the given (zero-based) retry
// attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	switch p.Kind {
	case RetryFixed:
		return p.Interval
	case RetryExponential:
		secs := p.InitialInterval.Seconds() * math.Pow(p.Multiplier, float64(attempt))
		delay := time.Duration(secs * float64(time.Second))
		if delay > p.MaxInterval {
			return p.MaxInterval
		}
		return delay
	default:
		return 0
	}
}

// MaxAttemptsAllowed returns the configured maximum number of attempts.
func (p RetryPolicy) MaxAttemptsAllowed() int {
	switch p.Kind {
	case RetryFixed, RetryExponential:
		return p.MaxAttempts
	default:
		return 0
	}
}
