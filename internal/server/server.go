// Package server exposes the calculator registry over a JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/iwvelando/finance-calculators/internal/optimizer"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// Options configures NewHandler. Only Registry is required.
type Options struct {
	Logger         *zap.Logger
	Registry       *calculator.Registry
	Config         *Config
	Version        string
	MeterProvider  metric.MeterProvider
	TracerProvider trace.TracerProvider
}

type handler struct {
	logger        *zap.Logger
	registry      *calculator.Registry
	schemas       map[string]*jsonschema.Schema
	optimizer     *optimizer.Runner
	telemetry     *telemetry
	maxUploadSize int64
	version       string
}

// NewHandler constructs the HTTP handler that serves the calculator API.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Registry == nil {
		return nil, errors.New("server requires a calculator registry")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	tel, err := newTelemetry(mp, tp)
	if err != nil {
		return nil, err
	}

	schemas := make(map[string]*jsonschema.Schema, opts.Registry.Len())
	for _, info := range opts.Registry.List() {
		calc, _ := opts.Registry.Get(info.ID)
		compiled, err := calculator.CompileSchema(calc)
		if err != nil {
			return nil, err
		}
		schemas[info.ID] = compiled
	}

	h := &handler{
		logger:        logger,
		registry:      opts.Registry,
		schemas:       schemas,
		optimizer:     optimizer.NewRunner(logger),
		telemetry:     tel,
		maxUploadSize: cfg.UploadSizeBytes(),
		version:       trimmedVersion,
	}

	r := chi.NewRouter()
	r.Use(withRequestID)
	r.Use(middleware.Recoverer)
	r.Use(tel.middleware(logger))
	r.Use(newRateLimiter(cfg.RateLimit).middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/healthz", h.handleHealth)
	r.Get("/api/version", h.handleVersion)
	r.Route("/api/calculators", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleDescribe)
			r.Get("/schema", h.handleSchema)
			r.Post("/validate", h.handleValidate)
			r.Post("/calculate", h.handleCalculate)
			r.Post("/optimize", h.handleOptimize)
		})
	})

	return r, nil
}

// NewHTTPServer wraps handler in an http.Server bound to the configured address.
func NewHTTPServer(cfg *Config, handler http.Handler) *http.Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}

type requestIDKey struct{}

func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type calculatorDetail struct {
	calculator.Info
	Fields   []calculator.Field   `json:"fields"`
	Formulas []calculator.Formula `json:"formulas"`
	Examples []calculator.Example `json:"examples"`
}

type calculateResponse struct {
	Result *calculator.Result `json:"result"`
}

type rejectedResponse struct {
	Error      string            `json:"error"`
	Validation validation.Result `json:"validation"`
}

type schemaErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details"`
}

type optimizeRequest struct {
	Inputs    calculator.Inputs      `json:"inputs"`
	Directive optimization.Directive `json:"optimize"`
}

type optimizeResponse struct {
	Optimization optimization.Summary `json:"optimization"`
	Inputs       calculator.Inputs    `json:"inputs"`
	Result       *calculator.Result   `json:"result"`
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]calculator.Info{
		"calculators": h.registry.List(),
	})
}

func (h *handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, calculatorDetail{
		Info:     calc.Info(),
		Fields:   calc.Fields(),
		Formulas: calc.Formulas(),
		Examples: calc.Examples(),
	})
}

func (h *handler) handleSchema(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	raw, err := calculator.JSONSchema(calc)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (h *handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	inputs, ok := h.decodeInputs(w, r, calc)
	if !ok {
		return
	}
	res := calc.Validate(inputs)
	h.telemetry.recordCalculation(r, calc.Info().ID, outcomeLabel(res.IsValid, "valid", "invalid"))
	h.writeJSON(w, http.StatusOK, res)
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}
	inputs, ok := h.decodeInputs(w, r, calc)
	if !ok {
		return
	}

	res, err := calc.Calculate(inputs)
	if err != nil {
		h.telemetry.recordCalculation(r, calc.Info().ID, "rejected")
		h.respondCalculationError(w, r, err)
		return
	}
	h.telemetry.recordCalculation(r, calc.Info().ID, "calculated")
	h.logger.Info("calculation served",
		zap.String("op", "server.handleCalculate"),
		zap.String("calculator", calc.Info().ID),
		zap.String("request_id", requestID(r.Context())),
	)
	h.writeJSON(w, http.StatusOK, calculateResponse{Result: res})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req optimizeRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	inputs, ok := h.checkSchema(w, r, calc, req.Inputs)
	if !ok {
		return
	}

	summary, err := h.optimizer.Seek(calc, inputs, req.Directive)
	if err != nil {
		h.telemetry.recordCalculation(r, calc.Info().ID, "rejected")
		h.respondCalculationError(w, r, err)
		return
	}

	inputs[summary.Field] = summary.Value
	res, err := calc.Calculate(inputs)
	if err != nil {
		h.telemetry.recordCalculation(r, calc.Info().ID, "rejected")
		h.respondCalculationError(w, r, err)
		return
	}
	h.telemetry.recordCalculation(r, calc.Info().ID, outcomeLabel(summary.Converged, "optimized", "unconverged"))
	h.writeJSON(w, http.StatusOK, optimizeResponse{Optimization: summary, Inputs: inputs, Result: res})
}

func outcomeLabel(ok bool, yes, no string) string {
	if ok {
		return yes
	}
	return no
}

func (h *handler) lookup(w http.ResponseWriter, r *http.Request) (calculator.Calculator, bool) {
	id := chi.URLParam(r, "id")
	calc, ok := h.registry.Get(id)
	if !ok {
		h.respondError(w, r, http.StatusNotFound, fmt.Sprintf("unknown calculator %q", id))
		return nil, false
	}
	return calc, true
}

// decodeBody reads a JSON body within the upload limit into dst.
func (h *handler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxUploadSize))
			return false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read request body: %v", err))
		return false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		h.respondError(w, r, http.StatusBadRequest, "request body is empty")
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request body: %v", err))
		return false
	}
	return true
}

// decodeInputs accepts either a bare input object or one wrapped in "inputs".
func (h *handler) decodeInputs(w http.ResponseWriter, r *http.Request, calc calculator.Calculator) (calculator.Inputs, bool) {
	var payload map[string]any
	if !h.decodeBody(w, r, &payload) {
		return nil, false
	}
	if wrapped, ok := payload["inputs"].(map[string]any); ok && len(payload) == 1 {
		payload = wrapped
	}
	return h.checkSchema(w, r, calc, payload)
}

// checkSchema canonicalizes the input keys and checks value types against the
// calculator's payload schema. Bounds, options and required fields are left to
// calculator validation. Unknown keys are kept so validation can warn about
// them.
func (h *handler) checkSchema(w http.ResponseWriter, r *http.Request, calc calculator.Calculator, inputs calculator.Inputs) (calculator.Inputs, bool) {
	canonical, unknown := calculator.Canonicalize(calc, inputs)
	doc := make(map[string]any, len(canonical))
	for k, v := range canonical {
		doc[k] = v
	}

	if err := h.schemas[calc.Info().ID].Validate(doc); err != nil {
		h.logger.Info("payload failed schema validation",
			zap.String("op", "server.checkSchema"),
			zap.String("calculator", calc.Info().ID),
			zap.String("request_id", requestID(r.Context())),
			zap.Error(err),
		)
		h.writeJSON(w, http.StatusBadRequest, schemaErrorResponse{
			Error:   "request does not match the calculator schema",
			Details: schemaDetails(err),
		})
		return nil, false
	}

	for _, key := range unknown {
		canonical[key] = inputs[key]
	}
	return canonical, true
}

func schemaDetails(err error) []string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	var details []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			details = append(details, fmt.Sprintf("%s: %s", loc, e.Message))
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return details
}

func (h *handler) respondCalculationError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *calculator.ValidationError
	if errors.As(err, &verr) {
		h.logger.Info("calculation rejected",
			zap.String("op", "server.respondCalculationError"),
			zap.String("calculator", verr.Calculator),
			zap.Strings("errors", verr.Result.Errors),
			zap.String("request_id", requestID(r.Context())),
		)
		h.writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{
			Error:      "inputs failed validation",
			Validation: verr.Result,
		})
		return
	}
	h.respondError(w, r, http.StatusBadRequest, err.Error())
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	fields := []zap.Field{
		zap.String("op", "server.respondError"),
		zap.Int("status", status),
		zap.String("path", r.URL.Path),
		zap.String("request_id", requestID(r.Context())),
		zap.String("error", msg),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields...)
	} else {
		h.logger.Info("request failed", fields...)
	}
	writeError(w, status, msg)
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	if err := encodeJSON(w, status, payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	_ = encodeJSON(w, status, map[string]string{"error": msg})
}

func encodeJSON(w http.ResponseWriter, status int, payload any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
