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
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DebugExporter is a sdktrace.SpanExporter that retains the most recent
// spans in memory, so a run's node/tool/LLM spans can be inspected
// without standing up a full tracing backend.
//
// Thread-safe for concurrent reads and writes.
type DebugExporter struct {
	mu      sync.RWMutex
	spans   map[string]*DebugSpan
	order   []string
	maxSize int
}

// DebugSpan is the captured shape of one span.
type DebugSpan struct {
	TraceID      string
	SpanID       string
	ParentSpanID string
	Name         string
	DurationMs   float64
	Attributes   map[string]string
	Status       string
	StatusMsg    string
}

// NewDebugExporter returns a DebugExporter retaining at most maxSize
// spans (oldest evicted first). maxSize <= 0 defaults to 1000.
func NewDebugExporter(maxSize int) *DebugExporter {
	if maxSize <= 0 {
		maxSize = 1000
	}
	return &DebugExporter{
		spans:   make(map[string]*DebugSpan),
		maxSize: maxSize,
	}
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *DebugExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, span := range spans {
		ds := convertSpan(span)
		e.spans[ds.SpanID] = ds
		e.order = append(e.order, ds.SpanID)
	}
	e.evictOldest()
	return nil
}

func convertSpan(span sdktrace.ReadOnlySpan) *DebugSpan {
	durationMs := float64(span.EndTime().UnixNano()-span.StartTime().UnixNano()) / 1e6

	ds := &DebugSpan{
		TraceID:    span.SpanContext().TraceID().String(),
		SpanID:     span.SpanContext().SpanID().String(),
		Name:       span.Name(),
		DurationMs: durationMs,
		Attributes: make(map[string]string, len(span.Attributes())),
		Status:     span.Status().Code.String(),
		StatusMsg:  span.Status().Description,
	}
	if span.Parent().HasSpanID() {
		ds.ParentSpanID = span.Parent().SpanID().String()
	}
	for _, attr := range span.Attributes() {
		ds.Attributes[string(attr.Key)] = attr.Value.AsString()
	}
	return ds
}

// evictOldest removes the oldest spans past maxSize. Caller holds the lock.
func (e *DebugExporter) evictOldest() {
	excess := len(e.order) - e.maxSize
	if excess <= 0 {
		return
	}
	for _, id := range e.order[:excess] {
		delete(e.spans, id)
	}
	e.order = e.order[excess:]
}

// Shutdown implements sdktrace.SpanExporter.
func (e *DebugExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.spans = make(map[string]*DebugSpan)
	e.order = nil
	return nil
}

// GetAllSpans returns every retained span, most recent last.
func (e *DebugExporter) GetAllSpans() []*DebugSpan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	result := make([]*DebugSpan, 0, len(e.order))
	for _, id := range e.order {
		if span, ok := e.spans[id]; ok {
			result = append(result, span)
		}
	}
	return result
}

// GetSpansByTrace returns every retained span for a given trace id.
func (e *DebugExporter) GetSpansByTrace(traceID string) []*DebugSpan {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var result []*DebugSpan
	for _, id := range e.order {
		if span, ok := e.spans[id]; ok && span.TraceID == traceID {
			result = append(result, span)
		}
	}
	return result
}

// Count returns the number of retained spans.
func (e *DebugExporter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.spans)
}

var _ sdktrace.SpanExporter = (*DebugExporter)(nil)
