package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerConfig holds tracer configuration
type TracerConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
	SampleRate     float64 // 0.0 - 1.0
}

// InitTracer initializes OpenTelemetry tracing with OTLP exporter
func InitTracer(config TracerConfig) (trace.TracerProvider, io.Closer, error) {
	if !config.Enabled {
		log.Info().Msg("Distributed tracing is disabled")
		return trace.NewNoopTracerProvider(), io.NopCloser(nil), nil
	}

	ctx := context.Background()

	// OTLP exporter (compatible with Jaeger, Grafana Tempo, etc.)
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(config.OTLPEndpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create resource: %w", err)
	}

	var sampler tracesdk.Sampler
	if config.SampleRate >= 1.0 {
		sampler = tracesdk.AlwaysSample()
	} else if config.SampleRate <= 0.0 {
		sampler = tracesdk.NeverSample()
	} else {
		sampler = tracesdk.TraceIDRatioBased(config.SampleRate)
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(res),
		tracesdk.WithSampler(sampler),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info().
		Str("service", config.ServiceName).
		Str("endpoint", config.OTLPEndpoint).
		Float64("sample_rate", config.SampleRate).
		Msg("Distributed tracing initialized with OTLP")

	closer := &tracerCloser{tp: tp}
	return tp, closer, nil
}

// tracerCloser implements io.Closer for tracer provider
type tracerCloser struct {
	tp *tracesdk.TracerProvider
}

func (c *tracerCloser) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.tp.Shutdown(ctx)
}

// Tracer wraps OpenTelemetry tracer with convenience methods
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a new tracer
func NewTracer(name string) *Tracer {
	return &Tracer{
		tracer: otel.Tracer(name),
	}
}

// StartSpan starts a new span
func (t *Tracer) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.RecordError(err, trace.WithAttributes(attrs...))
	}
}

// Common attribute keys
var (
	AttrFilterKey    = attribute.Key("query.filter_key")
	AttrFilteredRows = attribute.Key("query.filtered_rows")
	AttrPage         = attribute.Key("query.page")
	AttrPageSize     = attribute.Key("query.page_size")
	AttrSortBy       = attribute.Key("query.sort_by")
	AttrExportFormat = attribute.Key("export.format")
	AttrCacheHit     = attribute.Key("cache.hit")
)

// TraceReportBuild creates a span for the aggregation pass
func TraceReportBuild(ctx context.Context, tracer *Tracer, filterKey string) (context.Context, trace.Span) {
	return tracer.StartSpan(ctx, "report.build",
		AttrFilterKey.String(filterKey),
	)
}
