package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/finance-calculators/internal/config"
	"go.uber.org/zap"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestInitializeLogger(t *testing.T) {
	tests := []struct {
		name      string
		config    config.LoggingConfig
		override  string
		wantError bool
	}{
		{name: "Defaults", config: config.LoggingConfig{}},
		{name: "Console debug", config: config.LoggingConfig{Level: "debug", Format: "console"}},
		{name: "Override wins", config: config.LoggingConfig{Level: "nonsense"}, override: "warn"},
		{name: "Invalid level", config: config.LoggingConfig{Level: "loud"}, wantError: true},
		{name: "Invalid format", config: config.LoggingConfig{Format: "xml"}, wantError: true},
		{name: "Output file", config: config.LoggingConfig{OutputFile: filepath.Join(t.TempDir(), "logs", "app.log")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := initializeLogger(tt.config, tt.override)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("initializeLogger() error = %v", err)
			}
			logger.Info("test message")
			_ = logger.Sync()
			if tt.config.OutputFile != "" {
				data, err := os.ReadFile(tt.config.OutputFile)
				if err != nil {
					t.Fatalf("failed to read log file: %v", err)
				}
				if !strings.Contains(string(data), "test message") {
					t.Fatalf("expected the log file to receive output, got %q", data)
				}
			}
		})
	}
}

func TestParsePairs(t *testing.T) {
	inputs, err := parsePairs([]string{"loanAmount=450000", " loanType = fha ", "note=a=b"})
	if err != nil {
		t.Fatalf("parsePairs() error = %v", err)
	}
	if inputs["loanAmount"] != "450000" || inputs["loanType"] != "fha" || inputs["note"] != "a=b" {
		t.Fatalf("unexpected inputs %v", inputs)
	}

	for _, bad := range []string{"loanAmount", "=5"} {
		if _, err := parsePairs([]string{bad}); err == nil {
			t.Fatalf("expected an error for %q", bad)
		}
	}
}

func TestListCommand(t *testing.T) {
	out, err := execute(t, "list")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "| loan-to-value | Loan-to-Value (LTV) Ratio Calculator | Mortgage |") {
		t.Fatalf("unexpected list output:\n%s", out)
	}

	out, err = execute(t, "list", "--format", "json")
	if err != nil {
		t.Fatalf("list --format json failed: %v", err)
	}
	var infos []map[string]any
	if err := json.Unmarshal([]byte(out), &infos); err != nil || len(infos) != 8 {
		t.Fatalf("expected 8 calculators as JSON, got %q (%v)", out, err)
	}
}

func TestDescribeCommand(t *testing.T) {
	out, err := execute(t, "describe", "loan-to-value")
	if err != nil {
		t.Fatalf("describe failed: %v", err)
	}
	for _, want := range []string{
		"# Loan-to-Value (LTV) Ratio Calculator",
		"## Inputs",
		"| creditScore | Credit Score | whole number | 300 to 850 | 700 | No |",
		"| loanType | Loan Type | conventional, fha, va, usda, jumbo |",
		"## Formulas",
		"## Examples",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("describe output missing %q", want)
		}
	}

	if _, err := execute(t, "describe", "crystal-ball"); err == nil || !strings.Contains(err.Error(), "unknown calculator") {
		t.Fatalf("expected an unknown calculator error, got %v", err)
	}
}

func TestSchemaCommand(t *testing.T) {
	out, err := execute(t, "schema", "tax")
	if err != nil {
		t.Fatalf("schema failed: %v", err)
	}
	var schema map[string]any
	if err := json.Unmarshal([]byte(out), &schema); err != nil {
		t.Fatalf("schema output is not JSON: %v", err)
	}
	if schema["type"] != "object" {
		t.Fatalf("unexpected schema %v", schema)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "loan-to-value", "-i", "propertyValue=500000", "-i", "loanAmount=450000")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	if !strings.Contains(out, "Inputs are valid.") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = execute(t, "validate", "loan-to-value", "-i", "loanAmount=450000")
	if !errors.Is(err, errInvalidInputs) {
		t.Fatalf("expected errInvalidInputs, got %v", err)
	}
	if !strings.Contains(out, "- Property Value is required") {
		t.Fatalf("expected the error listed, got:\n%s", out)
	}
}

func TestCalcCommand(t *testing.T) {
	inputsFile := filepath.Join(t.TempDir(), "inputs.yaml")
	if err := os.WriteFile(inputsFile, []byte("propertyValue: 500000\nloanAmount: 450000\n"), 0600); err != nil {
		t.Fatalf("failed to write inputs: %v", err)
	}

	out, err := execute(t, "calc", "loan-to-value", "--inputs-file", inputsFile, "-i", "loanType=fha")
	if err != nil {
		t.Fatalf("calc failed: %v", err)
	}
	if !strings.Contains(out, "# Loan-to-Value Analysis") || !strings.Contains(out, "FHA") {
		t.Fatalf("unexpected report:\n%s", out)
	}

	out, err = execute(t, "calc", "loan-to-value", "--inputs-file", inputsFile, "--format", "csv")
	if err != nil {
		t.Fatalf("calc --format csv failed: %v", err)
	}
	if !strings.Contains(out, "Loan-to-Value (LTV) Ratio Calculator,loan-to-value,ltv,90") {
		t.Fatalf("unexpected CSV:\n%s", out)
	}
}

func TestCalcCommandOptimize(t *testing.T) {
	out, err := execute(t, "calc", "loan-to-value",
		"-i", "propertyValue=500000", "-i", "loanAmount=450000",
		"--optimize", "loanAmount", "--output", "ltv", "--target", "80", "--min", "100000", "--max", "480000",
		"--format", "json")
	if err != nil {
		t.Fatalf("calc --optimize failed: %v", err)
	}
	var outcomes []map[string]any
	if err := json.Unmarshal([]byte(out), &outcomes); err != nil {
		t.Fatalf("calc output is not JSON: %v", err)
	}
	summary := outcomes[0]["optimization"].(map[string]any)
	if summary["converged"] != true {
		t.Fatalf("expected convergence, got %v", summary)
	}
}

func TestCalcCommandExample(t *testing.T) {
	out, err := execute(t, "calc", "tax", "--example", "nonexistent")
	if err == nil || !strings.Contains(err.Error(), "has no example") {
		t.Fatalf("expected a missing example error, got %v (%s)", err, out)
	}
}

func TestCalcCommandOverridesIgnoreKeyCase(t *testing.T) {
	example := "Conventional Purchase with 10% Down"

	inputsFile := filepath.Join(t.TempDir(), "inputs.yaml")
	if err := os.WriteFile(inputsFile, []byte("PropertyValue: 1000000\n"), 0600); err != nil {
		t.Fatalf("failed to write inputs: %v", err)
	}

	for _, key := range []string{"loanAmount", "loanamount", "LOANAMOUNT"} {
		t.Run(key, func(t *testing.T) {
			out, err := execute(t, "calc", "loan-to-value", "--example", example, "--inputs-file", inputsFile,
				"-i", key+"=250000", "--format", "json")
			if err != nil {
				t.Fatalf("calc failed: %v", err)
			}
			var outcomes []map[string]any
			if err := json.Unmarshal([]byte(out), &outcomes); err != nil {
				t.Fatalf("calc output is not JSON: %v", err)
			}
			values := outcomes[0]["result"].(map[string]any)["values"].(map[string]any)
			if values["ltv"] != 25.0 {
				t.Fatalf("expected ltv 25 from the overrides, got %v", values["ltv"])
			}
		})
	}
}

func TestCalcCommandRejected(t *testing.T) {
	_, err := execute(t, "calc", "loan-to-value", "-i", "propertyValue=100000", "-i", "loanAmount=200000")
	if !errors.Is(err, errInvalidInputs) {
		t.Fatalf("expected errInvalidInputs, got %v", err)
	}
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `logging:
  level: error
  format: console
output:
  format: csv
calculations:
  - name: Purchase
    calculator: loan-to-value
    inputs:
      propertyValue: 500000
      loanAmount: 450000
`
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	out, err := execute(t, "run", "--config", path)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out, "calculation,calculator,metric,value") || !strings.Contains(out, "Purchase,loan-to-value,ltv,90") {
		t.Fatalf("unexpected CSV output:\n%s", out)
	}

	out, err = execute(t, "run", "--config", path, "--output-format", "markdown")
	if err != nil {
		t.Fatalf("run with override failed: %v", err)
	}
	if !strings.Contains(out, "# Loan-to-Value Analysis") {
		t.Fatalf("expected Markdown output, got:\n%s", out)
	}

	if _, err := execute(t, "run", "--config", path, "--output-format", "xml"); err == nil {
		t.Fatal("expected an error for an unsupported format")
	}
	if _, err := execute(t, "run", "--config", filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing configuration")
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}

	done := make(chan error, 1)
	go func() { done <- serve(ctx, zap.NewNop(), srv) }()
	cancel()

	if err := <-done; err != nil {
		t.Fatalf("serve() error = %v", err)
	}
}
