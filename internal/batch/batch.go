// Package batch runs every enabled calculation in a configuration.
package batch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/internal/optimizer"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"go.uber.org/zap"
)

// Outcome is the result of one configured calculation. Exactly one of Result
// or Error is set.
type Outcome struct {
	Name         string                `json:"name" yaml:"name"`
	Calculator   string                `json:"calculator" yaml:"calculator"`
	Inputs       calculator.Inputs     `json:"inputs" yaml:"inputs"`
	Result       *calculator.Result    `json:"result,omitempty" yaml:"result,omitempty"`
	Validation   validation.Result     `json:"validation" yaml:"validation"`
	Optimization *optimization.Summary `json:"optimization,omitempty" yaml:"optimization,omitempty"`
	Error        string                `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded reports whether the calculation produced a result.
func (o Outcome) Succeeded() bool {
	return o.Result != nil
}

// Run executes the enabled calculations of conf in order. A failing
// calculation is recorded in its Outcome and does not stop the others.
func Run(logger *zap.Logger, registry *calculator.Registry, conf config.Configuration) ([]Outcome, error) {
	if registry == nil {
		return nil, fmt.Errorf("batch run requires a calculator registry")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	runner := optimizer.NewRunner(logger)

	enabled := conf.Enabled()
	outcomes := make([]Outcome, 0, len(enabled))
	for _, calc := range enabled {
		outcome := runOne(logger, runner, registry, calc)
		if outcome.Succeeded() {
			logger.Debug("calculation complete",
				zap.String("op", "batch.Run"),
				zap.String("name", outcome.Name),
				zap.String("calculator", outcome.Calculator),
			)
		} else {
			logger.Warn("calculation failed",
				zap.String("op", "batch.Run"),
				zap.String("name", outcome.Name),
				zap.String("calculator", outcome.Calculator),
				zap.String("error", outcome.Error),
			)
		}
		outcomes = append(outcomes, outcome)
	}

	logger.Info("batch run complete",
		zap.String("op", "batch.Run"),
		zap.Int("calculations", len(outcomes)),
		zap.Int("failed", Failed(outcomes)),
	)
	return outcomes, nil
}

func runOne(logger *zap.Logger, runner *optimizer.Runner, registry *calculator.Registry, calc config.Calculation) Outcome {
	outcome := Outcome{Name: calc.Name, Calculator: calc.Calculator, Inputs: calc.Inputs}

	c, ok := registry.Get(calc.Calculator)
	if !ok {
		outcome.Error = fmt.Sprintf("unknown calculator %q", calc.Calculator)
		return outcome
	}

	inputs := calc.Inputs
	if calc.Optimize != nil {
		summary, err := runner.Seek(c, inputs, *calc.Optimize)
		if err != nil {
			outcome.Error = fmt.Sprintf("optimization failed: %v", err)
			return outcome
		}
		outcome.Optimization = &summary
		inputs = withValue(inputs, summary.Field, summary.Value)
		outcome.Inputs = inputs
		logger.Debug("applied optimized input",
			zap.String("op", "batch.runOne"),
			zap.String("name", calc.Name),
			zap.String("field", summary.Field),
			zap.Float64("value", summary.Value),
		)
	}

	res, err := c.Calculate(inputs)
	if err != nil {
		var verr *calculator.ValidationError
		if errors.As(err, &verr) {
			outcome.Validation = verr.Result
		}
		outcome.Error = err.Error()
		return outcome
	}
	outcome.Result = res
	outcome.Validation = res.Validation
	return outcome
}

// withValue returns a copy of in with field set to value, replacing any key
// that differs from field only by case.
func withValue(in calculator.Inputs, field string, value float64) calculator.Inputs {
	out := make(calculator.Inputs, len(in)+1)
	for k, v := range in {
		if strings.EqualFold(k, field) {
			continue
		}
		out[k] = v
	}
	out[field] = value
	return out
}

// Failed counts the outcomes that did not produce a result.
func Failed(outcomes []Outcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Succeeded() {
			n++
		}
	}
	return n
}
