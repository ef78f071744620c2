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
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus counters/histograms for node transitions,
// tool calls, LLM calls, and memory searches. A nil *Metrics makes every
// Record*/Inc*/Dec* method a no-op, so instrumentation call sites never
// need their own enabled check.
type Metrics struct {
	registry *prometheus.Registry

	nodeRuns        *prometheus.CounterVec
	nodeDuration    *prometheus.HistogramVec
	nodeErrors      *prometheus.CounterVec
	activeRuns      *prometheus.GaugeVec
	toolCalls       *prometheus.CounterVec
	toolDuration    *prometheus.HistogramVec
	toolErrors      *prometheus.CounterVec
	llmCalls        *prometheus.CounterVec
	llmDuration     *prometheus.HistogramVec
	llmTokensInput  *prometheus.CounterVec
	llmTokensOutput *prometheus.CounterVec
	memorySearches  *prometheus.CounterVec
	memoryDuration  *prometheus.HistogramVec
	checkpointsSaved *prometheus.CounterVec
}

// NewMetrics builds a Metrics registry under the given namespace.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.nodeRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "node", Name: "runs_total",
		Help: "Total number of graph node executions.",
	}, []string{"pattern", "node"})

	m.nodeDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "node", Name: "duration_seconds",
		Help: "Graph node execution duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"pattern", "node"})

	m.nodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "node", Name: "errors_total",
		Help: "Total number of graph node execution errors.",
	}, []string{"pattern", "node"})

	m.activeRuns = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "run", Name: "active",
		Help: "Number of currently active orchestrator runs.",
	}, []string{"pattern"})

	m.toolCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "tool", Name: "calls_total",
		Help: "Total number of tool invocations.",
	}, []string{"tool"})

	m.toolDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "tool", Name: "duration_seconds",
		Help: "Tool execution duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
	}, []string{"tool"})

	m.toolErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "tool", Name: "errors_total",
		Help: "Total number of tool execution errors.",
	}, []string{"tool"})

	m.llmCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "llm", Name: "calls_total",
		Help: "Total number of LLM API calls.",
	}, []string{"model"})

	m.llmDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "llm", Name: "duration_seconds",
		Help: "LLM API call duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"model"})

	m.llmTokensInput = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "llm", Name: "tokens_input_total",
		Help: "Total number of input tokens consumed.",
	}, []string{"model"})

	m.llmTokensOutput = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "llm", Name: "tokens_output_total",
		Help: "Total number of output tokens generated.",
	}, []string{"model"})

	m.memorySearches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "memory", Name: "searches_total",
		Help: "Total number of long-term memory searches.",
	}, []string{"backend"})

	m.memoryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "memory", Name: "search_duration_seconds",
		Help: "Memory search duration in seconds.", Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	}, []string{"backend"})

	m.checkpointsSaved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "checkpoint", Name: "saved_total",
		Help: "Total number of checkpoints written.",
	}, []string{"pattern"})

	m.registry.MustRegister(
		m.nodeRuns, m.nodeDuration, m.nodeErrors, m.activeRuns,
		m.toolCalls, m.toolDuration, m.toolErrors,
		m.llmCalls, m.llmDuration, m.llmTokensInput, m.llmTokensOutput,
		m.memorySearches, m.memoryDuration, m.checkpointsSaved,
	)
	return m
}

func (m *Metrics) RecordNode(pattern, node string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.nodeRuns.WithLabelValues(pattern, node).Inc()
	m.nodeDuration.WithLabelValues(pattern, node).Observe(duration.Seconds())
	if err != nil {
		m.nodeErrors.WithLabelValues(pattern, node).Inc()
	}
}

func (m *Metrics) IncActiveRuns(pattern string) {
	if m == nil {
		return
	}
	m.activeRuns.WithLabelValues(pattern).Inc()
}

func (m *Metrics) DecActiveRuns(pattern string) {
	if m == nil {
		return
	}
	m.activeRuns.WithLabelValues(pattern).Dec()
}

func (m *Metrics) RecordToolCall(tool string, duration time.Duration, isError bool) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(tool).Inc()
	m.toolDuration.WithLabelValues(tool).Observe(duration.Seconds())
	if isError {
		m.toolErrors.WithLabelValues(tool).Inc()
	}
}

func (m *Metrics) RecordLLMCall(model string, duration time.Duration, inputTokens, outputTokens int) {
	if m == nil {
		return
	}
	m.llmCalls.WithLabelValues(model).Inc()
	m.llmDuration.WithLabelValues(model).Observe(duration.Seconds())
	m.llmTokensInput.WithLabelValues(model).Add(float64(inputTokens))
	m.llmTokensOutput.WithLabelValues(model).Add(float64(outputTokens))
}

func (m *Metrics) RecordMemorySearch(backend string, duration time.Duration) {
	if m == nil {
		return
	}
	m.memorySearches.WithLabelValues(backend).Inc()
	m.memoryDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

func (m *Metrics) RecordCheckpointSaved(pattern string) {
	if m == nil {
		return
	}
	m.checkpointsSaved.WithLabelValues(pattern).Inc()
}

// Handler exposes the registry for scraping. Returns 503 for a nil Metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying Prometheus registry, or nil.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
