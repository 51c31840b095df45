package observability

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{ServiceName: "paybff"})
	require.NoError(t, err)
	assert.False(t, tracer.Enabled())

	ctx, span := tracer.StartSpan(context.Background(), "noop")
	span.End()
	assert.Equal(t, "", TraceIDFromContext(ctx))
	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestTracer_RecordsSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := NewTracerFromProvider(tp, "paybff")
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })

	ctx, span := tracer.StartSpan(context.Background(), "provider.pay")
	assert.NotEmpty(t, TraceIDFromContext(ctx))
	assert.Equal(t, span, SpanFromContext(ctx))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "provider.pay", ended[0].Name())
	assert.True(t, tracer.Enabled())
}

func TestNilTracer(t *testing.T) {
	t.Parallel()

	var tracer *Tracer
	_, span := tracer.StartSpan(context.Background(), "x")
	span.End()
	assert.NoError(t, tracer.Shutdown(context.Background()))
	assert.False(t, tracer.Enabled())
}

func TestCreateSampler(t *testing.T) {
	t.Parallel()

	assert.Equal(t, sdktrace.AlwaysSample().Description(), createSampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), createSampler(0).Description())
	assert.Contains(t, createSampler(0.5).Description(), "TraceIDRatioBased")
}

func TestBuildOTLPExporterOptions(t *testing.T) {
	t.Parallel()

	secure := buildOTLPExporterOptions(TracerConfig{OTLPEndpoint: "collector:4317"})
	insecure := buildOTLPExporterOptions(TracerConfig{OTLPEndpoint: "collector:4317", Insecure: true})
	assert.Len(t, secure, 4)
	assert.Len(t, insecure, 5)
}

func TestInjectExtractTraceContext(t *testing.T) {
	t.Parallel()

	tp := sdktrace.NewTracerProvider()
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	ctx, span := tp.Tracer("test").Start(context.Background(), "outbound")
	defer span.End()

	prop := propagation.TraceContext{}
	header := http.Header{}
	prop.Inject(ctx, propagation.HeaderCarrier(header))
	require.NotEmpty(t, header.Get("traceparent"))

	extracted := prop.Extract(context.Background(), propagation.HeaderCarrier(header))
	assert.Equal(t, span.SpanContext().TraceID().String(), TraceIDFromContext(extracted))
}
