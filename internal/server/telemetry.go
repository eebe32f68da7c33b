package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/iwvelando/finance-calculators/internal/server"

// Metric names recorded for every request.
const (
	MetricRequests    = "calculator.http.requests"
	MetricErrors      = "calculator.http.errors"
	MetricDuration    = "calculator.http.duration"
	MetricCalculation = "calculator.calculations"
)

type telemetry struct {
	tracer       trace.Tracer
	requests     metric.Int64Counter
	errors       metric.Int64Counter
	duration     metric.Float64Histogram
	calculations metric.Int64Counter
}

func newTelemetry(mp metric.MeterProvider, tp trace.TracerProvider) (*telemetry, error) {
	meter := mp.Meter(instrumentationName)
	t := &telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error
	if t.requests, err = meter.Int64Counter(MetricRequests,
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}
	if t.errors, err = meter.Int64Counter(MetricErrors,
		metric.WithDescription("HTTP requests answered with a 4xx or 5xx status"),
		metric.WithUnit("{request}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create error counter: %w", err)
	}
	if t.duration, err = meter.Float64Histogram(MetricDuration,
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create duration histogram: %w", err)
	}
	if t.calculations, err = meter.Int64Counter(MetricCalculation,
		metric.WithDescription("Calculator invocations by calculator and outcome"),
		metric.WithUnit("{calculation}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create calculation counter: %w", err)
	}
	return t, nil
}

// middleware wraps each request in a span and records RED metrics keyed by
// the matched route pattern.
func (t *telemetry) middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := t.tracer.Start(r.Context(), r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(attribute.String("http.request.method", r.Method)),
			)
			defer span.End()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			route := routePattern(r)
			attrs := metric.WithAttributes(
				attribute.String("http.route", route),
				attribute.String("http.request.method", r.Method),
				attribute.String("http.response.status_code", strconv.Itoa(status)),
			)
			elapsed := time.Since(start)

			t.requests.Add(ctx, 1, attrs)
			t.duration.Record(ctx, elapsed.Seconds(), attrs)
			if status >= http.StatusBadRequest {
				t.errors.Add(ctx, 1, attrs)
				span.SetStatus(codes.Error, http.StatusText(status))
			}
			span.SetName(r.Method + " " + route)
			span.SetAttributes(
				attribute.String("http.route", route),
				attribute.Int("http.response.status_code", status),
			)

			logger.Debug("request served",
				zap.String("op", "server.telemetry"),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Duration("duration", elapsed),
				zap.String("request_id", requestID(r.Context())),
			)
		})
	}
}

func (t *telemetry) recordCalculation(r *http.Request, calculatorID, outcome string) {
	t.calculations.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("calculator.id", calculatorID),
		attribute.String("calculator.outcome", outcome),
	))
	trace.SpanFromContext(r.Context()).AddEvent("calculation", trace.WithAttributes(
		attribute.String("calculator.id", calculatorID),
		attribute.String("calculator.outcome", outcome),
	))
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
