// Package optimizer goal-seeks a single calculator input so that one numeric
// output reaches a target value.
package optimizer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"go.uber.org/zap"
)

// Runner executes goal-seek directives.
type Runner struct {
	logger *zap.Logger
}

type target struct {
	calc      calculator.Calculator
	inputs    calculator.Inputs
	field     calculator.Field
	directive optimization.Directive
}

type outcome struct {
	best       evaluation
	iterations int
	converged  bool
	bracketed  bool
}

type evaluation struct {
	value    float64
	achieved float64
}

func (e evaluation) gap(goal float64) float64 {
	return e.achieved - goal
}

// NewRunner constructs a Runner. A nil logger discards output.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{logger: logger}
}

// Seek bisects the directive's field between its bounds until the output is
// within tolerance of the target. The provided inputs are not modified.
func (r *Runner) Seek(calc calculator.Calculator, inputs calculator.Inputs, d optimization.Directive) (optimization.Summary, error) {
	if calc == nil {
		return optimization.Summary{}, fmt.Errorf("optimizer requires a calculator")
	}
	if err := d.Validate(); err != nil {
		return optimization.Summary{}, err
	}

	t, notes, err := newTarget(calc, inputs, d)
	if err != nil {
		return optimization.Summary{}, err
	}

	summary := optimization.Summary{
		Calculator: calc.Info().ID,
		Field:      t.field.ID,
		Output:     d.Output,
		Original:   t.original(),
		Target:     d.Target,
		Notes:      notes,
	}

	result, err := r.search(t)
	if err != nil {
		return optimization.Summary{}, err
	}
	summary.Value = result.best.value
	summary.Achieved = result.best.achieved
	summary.Iterations = result.iterations
	summary.Converged = result.converged
	if !result.converged {
		summary.Notes = append(summary.Notes, t.failureNote(result))
	}

	r.logger.Info("optimizer adjusted input",
		zap.String("op", "optimizer.Seek"),
		zap.String("calculator", summary.Calculator),
		zap.String("field", summary.Field),
		zap.String("output", summary.Output),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("target", summary.Target),
		zap.Float64("achieved", summary.Achieved),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
	return summary, nil
}

func newTarget(calc calculator.Calculator, inputs calculator.Inputs, d optimization.Directive) (target, []string, error) {
	canonical, _ := calculator.Canonicalize(calc, inputs)

	var field *calculator.Field
	for _, f := range calc.Fields() {
		if strings.EqualFold(f.ID, d.Field) {
			f := f
			field = &f
			break
		}
	}
	if field == nil {
		return target{}, nil, fmt.Errorf("calculator %s has no input %q", calc.Info().ID, d.Field)
	}
	if field.Type != calculator.TypeNumber {
		return target{}, nil, fmt.Errorf("input %s is not numeric and cannot be optimized", field.ID)
	}

	var notes []string
	lo, hi := d.Min, d.Max
	if field.Min != nil && lo < *field.Min {
		lo = *field.Min
	}
	if field.Max != nil && hi > *field.Max {
		hi = *field.Max
	}
	if field.Integer {
		lo, hi = math.Ceil(lo), math.Floor(hi)
	}
	if lo != d.Min || hi != d.Max {
		notes = append(notes, fmt.Sprintf("bounds narrowed to %s through %s to fit %s", display(lo), display(hi), field.Name))
	}
	if lo >= hi {
		return target{}, nil, fmt.Errorf("optimizer bounds for %s leave no room to search", field.ID)
	}
	d.Min, d.Max = lo, hi

	return target{calc: calc, inputs: canonical, field: *field, directive: d}, notes, nil
}

func (t target) original() float64 {
	raw, ok := t.inputs[t.field.ID]
	if !ok || raw == nil {
		raw = t.field.Default
	}
	v, _ := calculator.Float(raw)
	return v
}

func (t target) evaluate(value float64) (evaluation, error) {
	candidate := make(calculator.Inputs, len(t.inputs)+1)
	for k, v := range t.inputs {
		candidate[k] = v
	}
	candidate[t.field.ID] = value

	res, err := t.calc.Calculate(candidate)
	if err != nil {
		var verr *calculator.ValidationError
		if errors.As(err, &verr) {
			return evaluation{}, fmt.Errorf("%s=%s rejected: %w", t.field.ID, display(value), err)
		}
		return evaluation{}, err
	}
	achieved, err := calculator.Metric(res.Values, t.directive.Output)
	if err != nil {
		return evaluation{}, fmt.Errorf("calculator %s: %w", t.calc.Info().ID, err)
	}
	return evaluation{value: value, achieved: achieved}, nil
}

func (t target) midpoint(lo, hi float64) float64 {
	mid := lo + (hi-lo)/2
	if t.field.Integer {
		mid = math.Floor(mid)
	}
	return mid
}

func (r *Runner) search(t target) (outcome, error) {
	d := t.directive
	within := func(e evaluation) bool { return math.Abs(e.gap(d.Target)) <= d.Tolerance }
	closer := func(a, b evaluation) evaluation {
		if math.Abs(b.gap(d.Target)) < math.Abs(a.gap(d.Target)) {
			return b
		}
		return a
	}

	lower, err := t.evaluate(d.Min)
	if err != nil {
		return outcome{}, err
	}
	if within(lower) {
		return outcome{best: lower, converged: true, bracketed: true}, nil
	}
	upper, err := t.evaluate(d.Max)
	if err != nil {
		return outcome{}, err
	}
	if within(upper) {
		return outcome{best: upper, converged: true, bracketed: true}, nil
	}

	result := outcome{best: closer(lower, upper)}
	if math.Signbit(lower.gap(d.Target)) == math.Signbit(upper.gap(d.Target)) {
		return result, nil
	}
	result.bracketed = true

	for result.iterations < d.MaxIterations {
		mid := t.midpoint(lower.value, upper.value)
		if mid <= lower.value || mid >= upper.value {
			break
		}
		eval, err := t.evaluate(mid)
		if err != nil {
			return outcome{}, err
		}
		result.iterations++
		r.logger.Debug("optimizer candidate",
			zap.String("op", "optimizer.search"),
			zap.String("field", t.field.ID),
			zap.Float64("value", mid),
			zap.Float64("achieved", eval.achieved),
		)
		result.best = closer(result.best, eval)
		if within(eval) {
			result.best = eval
			result.converged = true
			return result, nil
		}
		if math.Signbit(eval.gap(d.Target)) == math.Signbit(lower.gap(d.Target)) {
			lower = eval
		} else {
			upper = eval
		}
	}
	return result, nil
}

func (t target) failureNote(result outcome) string {
	d := t.directive
	switch {
	case !result.bracketed:
		return fmt.Sprintf("%s cannot reach %s for %s within bounds %s to %s",
			t.field.Name, display(d.Target), d.Output, display(d.Min), display(d.Max))
	case result.iterations >= d.MaxIterations:
		return fmt.Sprintf("stopped after %d iterations; closest %s is %s",
			result.iterations, d.Output, display(result.best.achieved))
	default:
		return fmt.Sprintf("no value of %s lands within %s of the target; closest %s is %s",
			t.field.Name, display(d.Tolerance), d.Output, display(result.best.achieved))
	}
}

func display(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
