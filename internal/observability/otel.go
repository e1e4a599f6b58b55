package observability

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"intervu/internal/ai"
	"intervu/internal/config"
	"intervu/internal/interview"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName    string
	ServiceVersion string
	Enabled        bool
	ConsoleOutput  bool
	PrettyPrint    bool
	SampleRate     float64
	Prometheus     PrometheusConfig
}

// Metrics holds all custom metrics for Intervu
type Metrics struct {
	// AI operation metrics
	AIProcessingTime metric.Float64Histogram
	AIRequestCount   metric.Int64Counter
	AIErrorCount     metric.Int64Counter
	AITokenUsage     metric.Int64Histogram

	// Interview metrics
	InterviewsStarted   metric.Int64Counter
	InterviewsCompleted metric.Int64Counter
	TurnsProcessed      metric.Int64Counter
	AnswerConfidence    metric.Float64Histogram
	FeedbackGenerated   metric.Int64Counter
	ActiveSessions      metric.Int64UpDownCounter

	// Prompt template metrics
	PromptReloadCount metric.Int64Counter

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config           ObservabilityConfig
	fullConfig       *config.Config // Store full config for access to nested settings
	tracerProvider   *trace.TracerProvider
	meterProvider    *sdkmetric.MeterProvider
	metrics          *Metrics
	shutdownFuncs    []func(context.Context) error
	prometheusServer *http.ServeMux
}

// The manager doubles as the metrics sink for the engine and the AI layer
var (
	_ interview.Metrics = (*ObservabilityManager)(nil)
	_ ai.UsageRecorder  = (*ObservabilityManager)(nil)
)

// NewObservabilityManager creates a new observability manager
func NewObservabilityManager(obsConfig ObservabilityConfig, fullConfig *config.Config) (*ObservabilityManager, error) {
	if !obsConfig.Enabled {
		return &ObservabilityManager{config: obsConfig, fullConfig: fullConfig}, nil
	}

	om := &ObservabilityManager{
		config:        obsConfig,
		fullConfig:    fullConfig,
		shutdownFuncs: make([]func(context.Context) error, 0),
	}

	if err := om.initResource(); err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}

	if err := om.initTracing(); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	if err := om.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	return om, nil
}

// initResource creates the OpenTelemetry resource
func (om *ObservabilityManager) initResource() error {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// Store resource for later use
	_ = res
	return nil
}

// initTracing sets up OpenTelemetry tracing
func (om *ObservabilityManager) initTracing() error {
	var exporter trace.SpanExporter
	var err error

	if om.config.ConsoleOutput {
		// Console exporter for development
		opts := []stdouttrace.Option{}
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	} else if om.fullConfig != nil && om.fullConfig.Observability.OTLP.Enabled {
		// OTLP exporter for production
		exporter, err = om.createOTLPExporter()
	} else {
		// No-op exporter when no production exporter is configured
		exporter = &noOpSpanExporter{}
	}

	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create resource
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// Create tracer provider
	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(res),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)

	return nil
}

// initMetrics sets up OpenTelemetry metrics
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.setupMetricReaders()
	if err != nil {
		return err
	}

	// Create resource
	res, err := om.createMetricsResource()
	if err != nil {
		return fmt.Errorf("failed to create resource: %w", err)
	}

	// Create meter provider with all readers
	meterProviderOptions := []sdkmetric.Option{
		sdkmetric.WithResource(res),
	}
	for _, reader := range readers {
		meterProviderOptions = append(meterProviderOptions, sdkmetric.WithReader(reader))
	}

	mp := sdkmetric.NewMeterProvider(meterProviderOptions...)

	otel.SetMeterProvider(mp)
	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	// Initialize custom metrics
	return om.initCustomMetrics()
}

// setupMetricReaders sets up all metric readers based on configuration
func (om *ObservabilityManager) setupMetricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader

	// Console exporter for development
	if err := om.setupConsoleReader(&readers); err != nil {
		return nil, err
	}

	// OTLP exporter for production metrics
	if err := om.setupOTLPReader(&readers); err != nil {
		return nil, err
	}

	// Prometheus exporter
	if err := om.setupPrometheusReader(&readers); err != nil {
		return nil, err
	}

	// If no readers configured, use manual reader as fallback
	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}

	return readers, nil
}

// setupConsoleReader sets up console metric reader if enabled
func (om *ObservabilityManager) setupConsoleReader(readers *[]sdkmetric.Reader) error {
	if !om.config.ConsoleOutput {
		return nil
	}

	exporter, err := stdoutmetric.New()
	if err != nil {
		return fmt.Errorf("failed to create console metric exporter: %w", err)
	}

	// Use configurable collection interval
	interval := om.getMetricsCollectionInterval()
	*readers = append(*readers, sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval)))
	return nil
}

// setupOTLPReader sets up OTLP metric reader if enabled
func (om *ObservabilityManager) setupOTLPReader(readers *[]sdkmetric.Reader) error {
	if om.fullConfig == nil || !om.fullConfig.Observability.OTLP.Enabled {
		return nil
	}

	otlpReader, err := om.createOTLPMetricsReader()
	if err != nil {
		return fmt.Errorf("failed to create OTLP metrics reader: %w", err)
	}
	if otlpReader != nil {
		*readers = append(*readers, otlpReader)
	}
	return nil
}

// setupPrometheusReader sets up Prometheus metric reader if enabled
func (om *ObservabilityManager) setupPrometheusReader(readers *[]sdkmetric.Reader) error {
	if !om.config.Prometheus.Enabled {
		return nil
	}

	prometheusReader, prometheusMux, err := SetupPrometheusExporter(om.config.Prometheus)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}
	if prometheusReader != nil {
		*readers = append(*readers, prometheusReader)
		om.prometheusServer = prometheusMux

		// Start Prometheus server
		if err := StartPrometheusServer(prometheusMux, om.config.Prometheus.Port); err != nil {
			return fmt.Errorf("failed to start Prometheus server: %w", err)
		}
	}
	return nil
}

// createMetricsResource creates the OpenTelemetry resource for metrics
func (om *ObservabilityManager) createMetricsResource() (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(om.config.ServiceName),
			semconv.ServiceVersion(om.config.ServiceVersion),
		),
	)
}

// initCustomMetrics creates all custom metrics for Intervu
func (om *ObservabilityManager) initCustomMetrics() error {
	meter := om.meterProvider.Meter(om.config.ServiceName)
	om.metrics = &Metrics{}

	if err := om.createAIMetrics(meter); err != nil {
		return err
	}

	if err := om.createInterviewMetrics(meter); err != nil {
		return err
	}

	if err := om.createPromptMetrics(meter); err != nil {
		return err
	}

	if err := om.createRateLimitMetrics(meter); err != nil {
		return err
	}

	return nil
}

// createAIMetrics creates AI-related metrics
func (om *ObservabilityManager) createAIMetrics(meter metric.Meter) error {
	var err error

	// AI operation metrics
	om.metrics.AIProcessingTime, err = meter.Float64Histogram(
		"intervu_ai_processing_duration_seconds",
		metric.WithDescription("Time spent processing AI requests"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI processing time metric: %w", err)
	}

	om.metrics.AIRequestCount, err = meter.Int64Counter(
		"intervu_ai_requests_total",
		metric.WithDescription("Total number of AI requests"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI request count metric: %w", err)
	}

	om.metrics.AIErrorCount, err = meter.Int64Counter(
		"intervu_ai_errors_total",
		metric.WithDescription("Total number of AI request errors"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI error count metric: %w", err)
	}

	// AI token usage tracking
	om.metrics.AITokenUsage, err = meter.Int64Histogram(
		"intervu_ai_token_usage_total",
		metric.WithDescription("Token usage for AI requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create AI token usage metric: %w", err)
	}

	return nil
}

// createInterviewMetrics creates interview lifecycle metrics
func (om *ObservabilityManager) createInterviewMetrics(meter metric.Meter) error {
	var err error

	om.metrics.InterviewsStarted, err = meter.Int64Counter(
		"intervu_interviews_started_total",
		metric.WithDescription("Total number of interviews started"),
	)
	if err != nil {
		return fmt.Errorf("failed to create interviews started metric: %w", err)
	}

	om.metrics.InterviewsCompleted, err = meter.Int64Counter(
		"intervu_interviews_completed_total",
		metric.WithDescription("Total number of interviews completed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create interviews completed metric: %w", err)
	}

	om.metrics.TurnsProcessed, err = meter.Int64Counter(
		"intervu_turns_processed_total",
		metric.WithDescription("Total number of candidate answers processed"),
	)
	if err != nil {
		return fmt.Errorf("failed to create turns processed metric: %w", err)
	}

	om.metrics.AnswerConfidence, err = meter.Float64Histogram(
		"intervu_answer_confidence",
		metric.WithDescription("Confidence score distribution for candidate answers"),
	)
	if err != nil {
		return fmt.Errorf("failed to create answer confidence metric: %w", err)
	}

	om.metrics.FeedbackGenerated, err = meter.Int64Counter(
		"intervu_feedback_generated_total",
		metric.WithDescription("Total number of feedback summaries generated"),
	)
	if err != nil {
		return fmt.Errorf("failed to create feedback generated metric: %w", err)
	}

	om.metrics.ActiveSessions, err = meter.Int64UpDownCounter(
		"intervu_active_sessions",
		metric.WithDescription("Number of interview sessions currently in progress"),
	)
	if err != nil {
		return fmt.Errorf("failed to create active sessions metric: %w", err)
	}

	return nil
}

// createPromptMetrics creates prompt template metrics
func (om *ObservabilityManager) createPromptMetrics(meter metric.Meter) error {
	var err error

	om.metrics.PromptReloadCount, err = meter.Int64Counter(
		"intervu_prompt_reloads_total",
		metric.WithDescription("Total number of prompt template reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create prompt reload count metric: %w", err)
	}

	return nil
}

// createRateLimitMetrics creates rate limiting metrics
func (om *ObservabilityManager) createRateLimitMetrics(meter metric.Meter) error {
	var err error

	om.metrics.RateLimitHits, err = meter.Int64Counter(
		"intervu_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	return nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	return otelhttp.NewMiddleware(
		om.config.ServiceName,
		otelhttp.WithTracerProvider(om.tracerProvider),
		otelhttp.WithMeterProvider(om.meterProvider),
	)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if !om.config.Enabled {
		return noop.NewTracerProvider().Tracer(name)
	}
	return otel.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// RecordAIOperation implements ai.UsageRecorder
func (om *ObservabilityManager) RecordAIOperation(ctx context.Context, operation string, duration time.Duration, usage *ai.TokenUsage, err error) {
	if om.metrics == nil || om.metrics.AIProcessingTime == nil {
		return
	}
	if !om.isAIMetricsEnabled() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	}

	if om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.AIOperations.TrackDuration {
		om.metrics.AIProcessingTime.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	}

	om.metrics.AIRequestCount.Add(ctx, 1, metric.WithAttributes(attrs...))

	if err != nil {
		om.metrics.AIErrorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	om.recordTokenUsage(ctx, operation, usage, err == nil)
}

// recordTokenUsage records input, output, and total token counts
func (om *ObservabilityManager) recordTokenUsage(ctx context.Context, operation string, usage *ai.TokenUsage, success bool) {
	if usage == nil || om.metrics.AITokenUsage == nil {
		return
	}
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		om.metrics.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.Bool("success", success),
			attribute.String("token_type", tt.tokenType),
		))
	}
}

// isAIMetricsEnabled checks if AI metrics are enabled in the configuration
func (om *ObservabilityManager) isAIMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.AIOperations.Enabled
}

// isBusinessMetricsEnabled checks if interview metrics are enabled in the configuration
func (om *ObservabilityManager) isBusinessMetricsEnabled() bool {
	if om.fullConfig == nil {
		return true
	}
	return om.fullConfig.Observability.CustomMetrics.BusinessMetrics.Enabled
}

// InterviewStarted implements interview.Metrics
func (om *ObservabilityManager) InterviewStarted(ctx context.Context) {
	if om.metrics == nil || om.metrics.InterviewsStarted == nil || !om.isBusinessMetricsEnabled() {
		return
	}
	om.metrics.InterviewsStarted.Add(ctx, 1)
}

// TurnProcessed implements interview.Metrics
func (om *ObservabilityManager) TurnProcessed(ctx context.Context, confidence float64, offTopic, hesitation bool) {
	if om.metrics == nil || om.metrics.TurnsProcessed == nil || !om.isBusinessMetricsEnabled() {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("off_topic", offTopic),
		attribute.Bool("hesitation", hesitation),
	}
	om.metrics.TurnsProcessed.Add(ctx, 1, metric.WithAttributes(attrs...))

	trackConfidence := om.fullConfig == nil || om.fullConfig.Observability.CustomMetrics.BusinessMetrics.TrackConfidence
	if trackConfidence && om.metrics.AnswerConfidence != nil {
		om.metrics.AnswerConfidence.Record(ctx, confidence, metric.WithAttributes(attrs...))
	}
}

// InterviewCompleted implements interview.Metrics
func (om *ObservabilityManager) InterviewCompleted(ctx context.Context, questionsAsked int) {
	if om.metrics == nil || om.metrics.InterviewsCompleted == nil || !om.isBusinessMetricsEnabled() {
		return
	}
	om.metrics.InterviewsCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.Int("questions_asked", questionsAsked),
	))
}

// FeedbackGenerated implements interview.Metrics
func (om *ObservabilityManager) FeedbackGenerated(ctx context.Context, success bool) {
	if om.metrics == nil || om.metrics.FeedbackGenerated == nil || !om.isBusinessMetricsEnabled() {
		return
	}
	om.metrics.FeedbackGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("success", success),
	))
}

// SessionsChanged implements interview.Metrics
func (om *ObservabilityManager) SessionsChanged(ctx context.Context, delta int) {
	if om.metrics == nil || om.metrics.ActiveSessions == nil || !om.isBusinessMetricsEnabled() {
		return
	}
	om.metrics.ActiveSessions.Add(ctx, int64(delta))
}

// RecordPromptReload records a prompt template reload
func (om *ObservabilityManager) RecordPromptReload(ctx context.Context, kind string, success bool) {
	if om.metrics == nil || om.metrics.PromptReloadCount == nil {
		return
	}
	om.metrics.PromptReloadCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.Bool("success", success),
	))
}

// RecordRateLimitHit records a rejected request
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limiterKey string) {
	// Rate limiting is an infrastructure metric
	if om.fullConfig != nil && !om.fullConfig.Observability.CustomMetrics.Infrastructure.TrackRateLimits {
		return
	}
	if om.metrics == nil || om.metrics.RateLimitHits == nil {
		return
	}
	om.metrics.RateLimitHits.Add(ctx, 1, metric.WithAttributes(
		attribute.String("limiter", limiterKey),
	))
}

// No-op exporters for when console output is disabled
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	// Prepare OTLP options
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	// Configure TLS
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	// Add custom headers if provided
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	// Create the OTLP exporter
	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	if om.fullConfig == nil {
		return nil, fmt.Errorf("config not available for OTLP configuration")
	}

	otlpConfig := om.fullConfig.Observability.OTLP

	// Prepare OTLP options
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}

	// Configure TLS
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	// Add custom headers if provided
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	// Create the OTLP metrics exporter
	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	// Use configurable collection interval for OTLP metrics
	interval := om.getMetricsCollectionInterval()
	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))

	return reader, nil
}

// getServiceInstanceID returns the service instance ID from config or generates one
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.fullConfig != nil && om.fullConfig.Observability.ServiceInstance != "" {
		return om.fullConfig.Observability.ServiceInstance
	}
	// Fallback to default if config not available
	return "intervu-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.fullConfig != nil {
		return om.fullConfig.Observability.Metrics.CollectionInterval
	}
	// Fallback to default
	return 15 * time.Second
}
