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
	"testing"
	"time"
)

func TestRetryPolicyNone(t *testing.T) {
	p := NoRetry()
	if p.ShouldRetry(0) {
		t.Fatalf("expected no retry")
	}
	if p.Delay(0) != 0 {
		t.Fatalf("expected zero delay")
	}
	if p.MaxAttemptsAllowed() != 0 {
		t.Fatalf("expected zero max attempts")
	}
}

func TestRetryPolicyFixed(t *testing.T) {
	p := FixedRetry(3, time.Second)
	for i := 0; i < 3; i++ {
		if !p.ShouldRetry(i) {
			t.Fatalf("expected retry at attempt %d", i)
		}
	}
	if p.ShouldRetry(3) {
		t.Fatalf("expected no retry past max attempts")
	}
	if p.Delay(0) != time.Second || p.Delay(1) != time.Second {
		t.Fatalf("expected constant delay")
	}
}

func TestRetryPolicyExponential(t *testing.T) {
	p := ExponentialRetry(3, time.Second, 10*time.Second, 2.0)
	for i := 0; i < 3; i++ {
		if !p.ShouldRetry(i) {
			t.Fatalf("expected retry at attempt %d", i)
		}
	}
	if p.ShouldRetry(3) {
		t.Fatalf("expected no retry past max attempts")
	}
	if p.Delay(0) != time.Second {
		t.Fatalf("delay(0): got %v want 1s", p.Delay(0))
	}
	if p.Delay(1) != 2*time.Second {
		t.Fatalf("delay(1): got %v want 2s", p.Delay(1))
	}
	if p.Delay(2) != 4*time.Second {
		t.Fatalf("delay(2): got %v want 4s", p.Delay(2))
	}
}

func TestRetryPolicyExponentialMaxCap(t *testing.T) {
	p := ExponentialRetry(5, time.Second, 5*time.Second, 2.0)
	if p.Delay(3) != 5*time.Second {
		t.Fatalf("delay(3): got %v want capped 5s", p.Delay(3))
	}
}
