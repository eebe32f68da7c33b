package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/finance-calculators/pkg/calculators"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const purchaseBody = `{"propertyValue": 500000, "loanAmount": 450000, "creditScore": 720}`

func newTestHandler(t *testing.T, cfg *Config, mp *sdkmetric.MeterProvider) http.Handler {
	t.Helper()
	registry, err := calculators.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	opts := Options{Logger: zap.NewNop(), Registry: registry, Config: cfg}
	if mp != nil {
		opts.MeterProvider = mp
	}
	h, err := NewHandler(opts)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	return h
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4321"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return out
}

func TestNewHandlerRequiresRegistry(t *testing.T) {
	if _, err := NewHandler(Options{}); err == nil {
		t.Fatal("expected an error without a registry")
	}
}

func TestHealthAndVersion(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := do(h, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK || decode(t, rr)["status"] != "ok" {
		t.Fatalf("unexpected health response %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(h, http.MethodGet, "/api/version", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := decode(t, rr)["version"]; got != "dev" {
		t.Fatalf("expected default version dev, got %v", got)
	}
}

func TestVersionOverride(t *testing.T) {
	registry, err := calculators.Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	h, err := NewHandler(Options{Registry: registry, Version: " 1.4.0 "})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	if got := decode(t, do(h, http.MethodGet, "/api/version", ""))["version"]; got != "1.4.0" {
		t.Fatalf("expected trimmed version, got %v", got)
	}
}

func TestListCalculators(t *testing.T) {
	rr := do(newTestHandler(t, nil, nil), http.MethodGet, "/api/calculators", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	var resp struct {
		Calculators []struct {
			ID string `json:"id"`
		} `json:"calculators"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Calculators) != 8 {
		t.Fatalf("expected 8 calculators, got %d", len(resp.Calculators))
	}
	if resp.Calculators[0].ID != "debt-service-coverage-ratio" {
		t.Fatalf("expected calculators sorted by id, got %s first", resp.Calculators[0].ID)
	}
}

func TestDescribeAndSchema(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := do(h, http.MethodGet, "/api/calculators/loan-to-value", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	detail := decode(t, rr)
	if detail["id"] != "loan-to-value" {
		t.Fatalf("unexpected id %v", detail["id"])
	}
	for _, key := range []string{"fields", "formulas", "examples"} {
		if items, ok := detail[key].([]any); !ok || len(items) == 0 {
			t.Fatalf("expected non-empty %s", key)
		}
	}

	rr = do(h, http.MethodGet, "/api/calculators/loan-to-value/schema", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/schema+json" {
		t.Fatalf("unexpected content type %q", ct)
	}
	schema := decode(t, rr)
	if schema["$id"] != "https://finance-calculators.local/schemas/loan-to-value.schema.json" {
		t.Fatalf("unexpected schema id %v", schema["$id"])
	}
}

func TestUnknownCalculator(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	for _, path := range []string{"/api/calculators/crystal-ball", "/api/calculators/crystal-ball/schema"} {
		rr := do(h, http.MethodGet, path, "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("%s: expected status 404, got %d", path, rr.Code)
		}
		if !strings.Contains(decode(t, rr)["error"].(string), "crystal-ball") {
			t.Fatalf("%s: expected the id in the error", path)
		}
	}
	if rr := do(h, http.MethodPost, "/api/calculators/crystal-ball/calculate", purchaseBody); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/nowhere", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rr := do(newTestHandler(t, nil, nil), http.MethodGet, "/api/calculators/loan-to-value/calculate", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rr.Code)
	}
}

func TestCalculate(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	for _, body := range []string{purchaseBody, `{"inputs": ` + purchaseBody + `}`} {
		rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/calculate", body)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
		}
		var resp struct {
			Result struct {
				Calculator string             `json:"calculator"`
				Values     map[string]any     `json:"values"`
				Report     string             `json:"report"`
				Validation struct{ IsValid bool } `json:"validation"`
			} `json:"result"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Result.Values["ltv"] != 90.0 {
			t.Fatalf("expected ltv 90, got %v", resp.Result.Values["ltv"])
		}
		if !strings.HasPrefix(resp.Result.Report, "# Loan-to-Value Analysis") {
			t.Fatalf("expected a Markdown report, got %q", resp.Result.Report)
		}
		if !resp.Result.Validation.IsValid {
			t.Fatal("expected a valid result")
		}
	}
}

func TestCalculateCaseInsensitiveKeys(t *testing.T) {
	rr := do(newTestHandler(t, nil, nil), http.MethodPost, "/api/calculators/loan-to-value/calculate",
		`{"PROPERTYVALUE": 500000, "loanamount": 400000, "hoaDues": 50}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	result := decode(t, rr)["result"].(map[string]any)
	warnings := result["validation"].(map[string]any)["warnings"].([]any)
	if len(warnings) != 1 || !strings.Contains(warnings[0].(string), "hoaDues") {
		t.Fatalf("expected a warning for the unknown key, got %v", warnings)
	}
}

func TestCalculateErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		contains string
	}{
		{name: "Empty body", body: "", status: http.StatusBadRequest, contains: "request body is empty"},
		{name: "Malformed JSON", body: `{"propertyValue":`, status: http.StatusBadRequest, contains: "failed to decode"},
		{name: "Wrong type", body: `{"propertyValue": {"amount": 5}, "loanAmount": 1000}`, status: http.StatusBadRequest, contains: "/propertyValue"},
		{name: "Number for option", body: `{"propertyValue": 5000, "loanAmount": 1000, "loanType": 3}`, status: http.StatusBadRequest, contains: "/loanType"},
		{name: "Missing required", body: `{"loanAmount": 1000}`, status: http.StatusUnprocessableEntity, contains: "Property Value is required"},
		{name: "Out of range", body: `{"propertyValue": -5, "loanAmount": 1000}`, status: http.StatusUnprocessableEntity, contains: "Property Value must be at least"},
		{name: "Bad option", body: `{"propertyValue": 5000, "loanAmount": 1000, "loanType": "balloon"}`, status: http.StatusUnprocessableEntity, contains: "Loan Type must be one of"},
		{name: "Cross-field rule", body: `{"propertyValue": 100000, "loanAmount": 200000}`, status: http.StatusUnprocessableEntity, contains: "Total liens cannot exceed 125% of property value"},
		{name: "Fractional score", body: `{"propertyValue": 100000, "loanAmount": 80000, "creditScore": "720.5"}`, status: http.StatusUnprocessableEntity, contains: "Credit Score must be a whole number"},
	}

	h := newTestHandler(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/calculate", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.contains) {
				t.Fatalf("expected body containing %q, got %s", tt.contains, rr.Body.String())
			}
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/validate", purchaseBody)
	if rr.Code != http.StatusOK || decode(t, rr)["isValid"] != true {
		t.Fatalf("expected a valid result, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = do(h, http.MethodPost, "/api/calculators/loan-to-value/validate", `{"propertyValue": 100000, "loanAmount": 200000}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	res := decode(t, rr)
	if res["isValid"] != false {
		t.Fatal("expected an invalid result")
	}
	if errs := res["errors"].([]any); len(errs) != 1 {
		t.Fatalf("expected one error, got %v", errs)
	}
}

func TestValidateEndpointReportsFieldErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "Negative number", body: `{"propertyValue": -5, "loanAmount": 1000}`, want: "Property Value must be at least 1"},
		{name: "Negative string", body: `{"propertyValue": "-5", "loanAmount": 1000}`, want: "Property Value must be at least 1"},
		{name: "Unknown option", body: `{"propertyValue": 5000, "loanAmount": 1000, "loanType": "balloon"}`, want: "Loan Type must be one of"},
		{name: "Missing required", body: `{"loanAmount": 1000}`, want: "Property Value is required"},
	}

	h := newTestHandler(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/validate", tt.body)
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			res := decode(t, rr)
			if res["isValid"] != false {
				t.Fatalf("expected an invalid result, got %v", res)
			}
			if !strings.Contains(rr.Body.String(), tt.want) {
				t.Fatalf("expected %q in %s", tt.want, rr.Body.String())
			}
		})
	}

	rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/validate", `{"propertyValue": [1], "loanAmount": 1000}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a malformed value, got %d", rr.Code)
	}
}

func TestOptimize(t *testing.T) {
	h := newTestHandler(t, nil, nil)
	body := `{"inputs": ` + purchaseBody + `, "optimize": {"field": "loanAmount", "output": "ltv", "target": 80, "min": 100000, "max": 480000}}`

	rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/optimize", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode(t, rr)
	summary := resp["optimization"].(map[string]any)
	if summary["converged"] != true || summary["original"] != 450000.0 {
		t.Fatalf("unexpected summary %v", summary)
	}
	values := resp["result"].(map[string]any)["values"].(map[string]any)
	if values["ltv"] != 80.0 {
		t.Fatalf("expected ltv 80 after optimization, got %v", values["ltv"])
	}
	if resp["inputs"].(map[string]any)["loanAmount"] != summary["value"] {
		t.Fatal("expected the optimized value in the returned inputs")
	}
}

func TestOptimizeErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
	}{
		{
			name:   "Non-numeric field",
			body:   `{"inputs": ` + purchaseBody + `, "optimize": {"field": "loanType", "output": "ltv", "min": 0, "max": 1}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "Missing directive",
			body:   `{"inputs": ` + purchaseBody + `}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "Rejected candidate",
			body:   `{"inputs": ` + purchaseBody + `, "optimize": {"field": "secondLoanAmount", "output": "cltv", "target": 100, "min": 0, "max": 1000000}}`,
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "Inputs fail schema",
			body:   `{"inputs": {"propertyValue": [1], "loanAmount": 1}, "optimize": {"field": "loanAmount", "output": "ltv", "min": 1, "max": 2}}`,
			status: http.StatusBadRequest,
		},
		{
			name:   "Inputs fail validation",
			body:   `{"inputs": {"loanAmount": 1}, "optimize": {"field": "loanAmount", "output": "ltv", "min": 1, "max": 2}}`,
			status: http.StatusUnprocessableEntity,
		},
	}

	h := newTestHandler(t, nil, nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(h, http.MethodPost, "/api/calculators/loan-to-value/optimize", tt.body)
			if rr.Code != tt.status {
				t.Fatalf("expected status %d, got %d: %s", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestRequestTooLarge(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetUploadSizeBytes(32)
	rr := do(newTestHandler(t, cfg, nil), http.MethodPost, "/api/calculators/loan-to-value/calculate", purchaseBody)
	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected status 413, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	h := newTestHandler(t, nil, nil)

	rr := do(h, http.MethodGet, "/healthz", "")
	generated := rr.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(generated); err != nil {
		t.Fatalf("expected a generated UUID, got %q", generated)
	}

	incoming := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, incoming)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got != incoming {
		t.Fatalf("expected the incoming id %q to be echoed, got %q", incoming, got)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get(RequestIDHeader); got == "not-a-uuid" {
		t.Fatal("expected an invalid id to be replaced")
	}
}

func TestRateLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimit = RateLimitConfig{RequestsPerSecond: 0.001, Burst: 2}
	h := newTestHandler(t, cfg, nil)

	for i := 0; i < 2; i++ {
		if rr := do(h, http.MethodGet, "/healthz", ""); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, rr.Code)
		}
	}
	rr := do(h, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("expected a Retry-After header")
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "198.51.100.7:80"
	other := httptest.NewRecorder()
	h.ServeHTTP(other, req)
	if other.Code != http.StatusOK {
		t.Fatalf("expected a different client to be allowed, got %d", other.Code)
	}
}

func TestRateLimiterSweepsStaleVisitors(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{RequestsPerSecond: 10, Burst: 1})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.allow("192.0.2.1")
	rl.allow("192.0.2.2")
	if rl.size() != 2 {
		t.Fatalf("expected 2 visitors, got %d", rl.size())
	}

	now = now.Add(visitorTTL + time.Second)
	rl.allow("192.0.2.3")
	if rl.size() != 1 {
		t.Fatalf("expected stale visitors to be swept, got %d", rl.size())
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	if rl := newRateLimiter(RateLimitConfig{}); rl != nil {
		t.Fatal("expected a nil limiter when the rate is zero")
	}
}

func TestMetricsRecorded(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	h := newTestHandler(t, nil, mp)
	do(h, http.MethodPost, "/api/calculators/loan-to-value/calculate", purchaseBody)
	do(h, http.MethodPost, "/api/calculators/loan-to-value/calculate", `{"propertyValue": 100000, "loanAmount": 200000}`)
	do(h, http.MethodGet, "/api/calculators/crystal-ball", "")

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	requests := sumByAttribute(t, rm, MetricRequests, "http.response.status_code")
	if requests["200"] != 1 || requests["422"] != 1 || requests["404"] != 1 {
		t.Fatalf("unexpected request counts %v", requests)
	}
	errs := sumByAttribute(t, rm, MetricErrors, "http.response.status_code")
	if errs["422"] != 1 || errs["404"] != 1 || errs["200"] != 0 {
		t.Fatalf("unexpected error counts %v", errs)
	}
	outcomes := sumByAttribute(t, rm, MetricCalculation, "calculator.outcome")
	if outcomes["calculated"] != 1 || outcomes["rejected"] != 1 {
		t.Fatalf("unexpected calculation counts %v", outcomes)
	}
	routes := sumByAttribute(t, rm, MetricRequests, "http.route")
	found := false
	for route := range routes {
		if strings.Contains(route, "{id}") && strings.HasSuffix(route, "/calculate") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a templated calculate route, got %v", routes)
	}

	if !hasHistogram(rm, MetricDuration) {
		t.Fatal("expected a duration histogram")
	}
}

func sumByAttribute(t *testing.T, rm metricdata.ResourceMetrics, name, key string) map[string]int64 {
	t.Helper()
	totals := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("metric %s is %T, not an int64 sum", name, m.Data)
			}
			for _, dp := range sum.DataPoints {
				value, _ := dp.Attributes.Value(attribute.Key(key))
				totals[value.AsString()] += dp.Value
			}
		}
	}
	return totals
}

func hasHistogram(rm metricdata.ResourceMetrics, name string) bool {
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if h, ok := m.Data.(metricdata.Histogram[float64]); ok && m.Name == name {
				return len(h.DataPoints) > 0
			}
		}
	}
	return false
}

func TestHTTPServerRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t, nil, nil))
	defer srv.Close()

	client := srv.Client()
	resp, err := client.Post(srv.URL+"/api/calculators/loan-to-value/calculate", "application/json", strings.NewReader(purchaseBody))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
	client.CloseIdleConnections()
}

func TestNewHTTPServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	if srv.Addr != "127.0.0.1:0" || srv.ReadHeaderTimeout == 0 {
		t.Fatalf("unexpected server %+v", srv)
	}
}
