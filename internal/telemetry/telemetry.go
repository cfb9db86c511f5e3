package telemetry

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Config holds OpenTelemetry configuration
type Config struct {
	Enabled          bool
	ServiceName      string
	ServiceNamespace string
	ServiceVersion   string
	Environment      string
	OTLPEndpoint     string
	TracesSampler    string
	SampleRatio      float64
	MetricsInterval  time.Duration
}

// LoadConfig reads the OTEL_* environment. Export is off unless
// OTEL_ENABLED is true; environment defaults to the application mode.
func LoadConfig(mode string) Config {
	cfg := Config{
		ServiceName:      envOr("OTEL_SERVICE_NAME", "care-record-service"),
		ServiceNamespace: envOr("OTEL_SERVICE_NAMESPACE", "wailsalutem"),
		ServiceVersion:   envOr("OTEL_SERVICE_VERSION", "1.0.0"),
		Environment:      envOr("ENVIRONMENT", mode),
		OTLPEndpoint:     envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		TracesSampler:    envOr("OTEL_TRACES_SAMPLER", "always_on"),
		SampleRatio:      0.1,
		MetricsInterval:  30 * time.Second,
	}
	if enabled, err := strconv.ParseBool(os.Getenv("OTEL_ENABLED")); err == nil {
		cfg.Enabled = enabled
	}
	if raw := os.Getenv("OTEL_TRACES_SAMPLER_ARG"); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio >= 0 && ratio <= 1 {
			cfg.SampleRatio = ratio
		}
	}
	if raw := os.Getenv("OTEL_METRICS_EXPORT_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			cfg.MetricsInterval = d
		}
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Provider holds the OpenTelemetry providers
type Provider struct {
	TracerProvider *trace.TracerProvider
	MeterProvider  *metric.MeterProvider
	logger         *zap.Logger
}

// InitProvider initializes OpenTelemetry tracer and meter providers.
// A disabled config or an unreachable collector leaves the global no-op
// providers in place and the service keeps running.
func InitProvider(ctx context.Context, cfg Config, logger *zap.Logger) (*Provider, error) {
	p := &Provider{logger: logger}
	if !cfg.Enabled {
		logger.Info("OpenTelemetry export disabled")
		return p, nil
	}
	logger.Info("initializing OpenTelemetry", zap.String("endpoint", cfg.OTLPEndpoint))

	// Create resource with service information
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceNamespace(cfg.ServiceNamespace),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Initialize trace provider
	tracerProvider, err := initTracerProvider(ctx, cfg, res)
	if err != nil {
		logger.Warn("continuing without distributed tracing", zap.Error(err))
	} else {
		otel.SetTracerProvider(tracerProvider)
		p.TracerProvider = tracerProvider
		logger.Info("✓ OpenTelemetry tracer provider initialized")
	}

	// Initialize meter provider
	meterProvider, err := initMeterProvider(ctx, cfg, res)
	if err != nil {
		logger.Warn("continuing without metrics export", zap.Error(err))
	} else {
		otel.SetMeterProvider(meterProvider)
		p.MeterProvider = meterProvider
		logger.Info("✓ OpenTelemetry meter provider initialized")
	}

	// Set global propagator for context propagation
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return p, nil
}

// initTracerProvider initializes the trace provider with OTLP exporter
func initTracerProvider(ctx context.Context, cfg Config, res *resource.Resource) (*trace.TracerProvider, error) {
	// Create OTLP trace exporter with timeout and retry
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		otlptracegrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	var sampler trace.Sampler
	switch cfg.TracesSampler {
	case "always_off":
		sampler = trace.NeverSample()
	case "traceidratio":
		sampler = trace.TraceIDRatioBased(cfg.SampleRatio)
	case "parentbased_traceidratio":
		sampler = trace.ParentBased(trace.TraceIDRatioBased(cfg.SampleRatio))
	default:
		sampler = trace.AlwaysSample()
	}

	// Create tracer provider with batch span processor
	tracerProvider := trace.NewTracerProvider(
		trace.WithResource(res),
		trace.WithSampler(sampler),
		trace.WithBatcher(traceExporter,
			trace.WithBatchTimeout(5*time.Second),
			trace.WithMaxExportBatchSize(512),
		),
	)

	return tracerProvider, nil
}

// initMeterProvider initializes the meter provider with OTLP exporter
func initMeterProvider(ctx context.Context, cfg Config, res *resource.Resource) (*metric.MeterProvider, error) {
	// Create OTLP metric exporter with timeout
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	metricExporter, err := otlpmetricgrpc.New(ctx,
		otlpmetricgrpc.WithEndpoint(cfg.OTLPEndpoint),
		otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		otlpmetricgrpc.WithTimeout(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metric exporter: %w", err)
	}

	// Create meter provider with periodic reader
	meterProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(metricExporter,
			metric.WithInterval(cfg.MetricsInterval),
		)),
	)

	return meterProvider, nil
}

// Shutdown flushes and stops whichever providers were started.
func (p *Provider) Shutdown(ctx context.Context) error {
	var err error
	if p.TracerProvider != nil {
		if shutdownErr := p.TracerProvider.Shutdown(ctx); shutdownErr != nil {
			p.logger.Error("failed to shut down tracer provider", zap.Error(shutdownErr))
			err = shutdownErr
		}
	}
	if p.MeterProvider != nil {
		if shutdownErr := p.MeterProvider.Shutdown(ctx); shutdownErr != nil {
			p.logger.Error("failed to shut down meter provider", zap.Error(shutdownErr))
			if err == nil {
				err = shutdownErr
			}
		}
	}
	return err
}
