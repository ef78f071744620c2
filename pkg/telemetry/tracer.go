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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer wraps a trace.TracerProvider with the optional in-memory debug
// exporter, so callers can both emit spans through the normal otel API
// and inspect recent ones directly.
type Tracer struct {
	provider trace.TracerProvider
	sdk      *sdktrace.TracerProvider
	debug    *DebugExporter
}

// NewTracer builds a Tracer from cfg. A disabled config returns a Tracer
// backed by otel's no-op provider, so Start/End calls are cheap and safe
// with no exporter ever configured.
func NewTracer(cfg Config) (*Tracer, error) {
	cfg.SetDefaults()
	if !cfg.Enabled {
		return &Tracer{provider: noop.NewTracerProvider()}, nil
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	sampler := sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	if cfg.CaptureDebugSpans {
		sampler = sdktrace.AlwaysSample()
	}
	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	}

	var debug *DebugExporter
	if cfg.CaptureDebugSpans {
		debug = NewDebugExporter(cfg.DebugSpanCapacity)
		opts = append(opts, sdktrace.WithSyncer(debug))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &Tracer{provider: tp, sdk: tp, debug: debug}, nil
}

// Start begins a span named name under ctx's current span, if any.
func (t *Tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	tracer := t.provider.Tracer("github.com/loomgraph/runtime")
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// DebugExporter returns the in-memory span store, or nil if
// CaptureDebugSpans was false.
func (t *Tracer) DebugExporter() *DebugExporter {
	if t == nil {
		return nil
	}
	return t.debug
}

// Shutdown flushes and stops the underlying SDK provider. No-op for the
// no-op provider used when tracing is disabled.
func (t *Tracer) Shutdown(ctx context.Context) error {
	if t == nil || t.sdk == nil {
		return nil
	}
	return t.sdk.Shutdown(ctx)
}
