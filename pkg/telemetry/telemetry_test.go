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
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loomgraph/runtime/pkg/graph"
)

func TestNewManagerDisabledIsSafeNoOp(t *testing.T) {
	m, err := NewManager(nil)
	require.NoError(t, err)
	assert.Nil(t, m.Metrics())

	ctx, span := m.Tracer().Start(context.Background(), "anything")
	span.End()
	assert.NotNil(t, ctx)

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestNewManagerEnabledCapturesDebugSpans(t *testing.T) {
	m, err := NewManager(&Config{Enabled: true, CaptureDebugSpans: true})
	require.NoError(t, err)
	require.NotNil(t, m.Metrics())

	_, span := m.Tracer().Start(context.Background(), "test-span")
	span.End()

	debug := m.Tracer().DebugExporter()
	require.NotNil(t, debug)
	assert.Equal(t, 1, debug.Count())
	assert.Equal(t, "test-span", debug.GetAllSpans()[0].Name)

	require.NoError(t, m.Shutdown(context.Background()))
}

func TestMetricsHandlerServesPrometheusFormat(t *testing.T) {
	m := NewMetrics("testns")
	m.RecordNode("react", "think", 0, nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "testns_node_runs_total")
}

func TestNilMetricsHandlerReturns503(t *testing.T) {
	var m *Metrics
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakeNode struct {
	name string
	err  error
}

func (f fakeNode) ID() string { return f.name }

func (f fakeNode) Run(_ context.Context, _ *graph.RunContext[int], s int) (int, graph.Next, error) {
	return s + 1, graph.NextEnd(), f.err
}

func TestTracedNodeRecordsMetricsAndPropagatesResult(t *testing.T) {
	metrics := NewMetrics("testns")
	tracer, err := NewTracer(Config{Enabled: true, CaptureDebugSpans: true})
	require.NoError(t, err)

	node := Traced[int](fakeNode{name: "think"}, "react", tracer, metrics)
	rc := graph.NewRunContext[int](graph.RunnableConfig{})

	out, next, err := node.Run(context.Background(), rc, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, out)
	assert.Equal(t, graph.NextEnd(), next)

	debug := tracer.DebugExporter()
	require.NotNil(t, debug)
	assert.Equal(t, 1, debug.Count())
	assert.Equal(t, "node.think", debug.GetAllSpans()[0].Name)
}

func TestTracedNodePropagatesNodeError(t *testing.T) {
	metrics := NewMetrics("testns2")
	tracer, err := NewTracer(Config{Enabled: false})
	require.NoError(t, err)

	boom := errors.New("boom")
	node := Traced[int](fakeNode{name: "act", err: boom}, "react", tracer, metrics)
	rc := graph.NewRunContext[int](graph.RunnableConfig{})

	_, _, err = node.Run(context.Background(), rc, 1)
	assert.ErrorIs(t, err, boom)
}
