// Package tracing installs the global OpenTelemetry tracer provider.
//
// With no endpoint configured Init installs nothing and spans created through
// otel.Tracer stay no-ops.
package tracing

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// ErrInvalidSampleRatio is returned for ratios outside [0, 1].
var ErrInvalidSampleRatio = errors.New("tracing: sample ratio must be within [0, 1]")

// Config is the OTEL_* environment surface.
type Config struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"false"`
	SampleRatio float64 `env:"OTEL_TRACES_SAMPLE_RATIO" envDefault:"0.1"`
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Init exports spans over OTLP/gRPC when cfg.Endpoint is set.
func Init(ctx context.Context, cfg Config, service, env string) (ShutdownFunc, error) {
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1 {
		return nil, ErrInvalidSampleRatio
	}
	if cfg.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(service),
		semconv.DeploymentEnvironment(env),
	))
	if err != nil {
		// Schema URL conflicts with the SDK default; keep our attributes.
		res = resource.NewSchemaless(semconv.ServiceName(service), semconv.DeploymentEnvironment(env))
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
