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

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/loomgraph/runtime/pkg/graph"
)

// TracedNode wraps a graph.Node[S] so every Run call opens a span named
// after the node (recording its duration and error outcome as span
// attributes) and records the same outcome into Metrics, without the
// wrapped node needing to know telemetry exists.
type TracedNode[S any] struct {
	inner   graph.Node[S]
	pattern string
	tracer  *Tracer
	metrics *Metrics
}

// Traced decorates n with span and counter recording under the given
// pattern name (e.g. "react", "tot"). A nil tracer and nil metrics, or
// the no-op tracer and nil metrics of a Manager built from a disabled
// Config, make this a near-zero-cost passthrough.
func Traced[S any](n graph.Node[S], pattern string, tracer *Tracer, metrics *Metrics) graph.Node[S] {
	return &TracedNode[S]{inner: n, pattern: pattern, tracer: tracer, metrics: metrics}
}

func (t *TracedNode[S]) ID() string { return t.inner.ID() }

func (t *TracedNode[S]) Run(ctx context.Context, rc *graph.RunContext[S], s S) (S, graph.Next, error) {
	ctx, span := t.tracer.Start(ctx, "node."+t.inner.ID(),
		attribute.String("pattern", t.pattern),
		attribute.String("node", t.inner.ID()),
	)
	defer span.End()

	start := time.Now()
	out, next, err := t.inner.Run(ctx, rc, s)
	duration := time.Since(start)

	t.metrics.RecordNode(t.pattern, t.inner.ID(), duration, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	return out, next, err
}

var _ graph.Node[struct{}] = (*TracedNode[struct{}])(nil)

// StartToolSpan starts a span for one tool call, for callers (e.g.
// pattern/react's act node) that want span correlation around a tool
// invocation without wrapping a whole graph.Node.
func StartToolSpan(ctx context.Context, tracer *Tracer, toolName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "tool."+toolName, attribute.String("tool", toolName))
}
