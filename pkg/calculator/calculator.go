// Package calculator defines the contract shared by every financial
// calculator: an input schema, validation, a pure computation and a
// Markdown report.
package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/mitchellh/mapstructure"
)

// Info identifies a calculator.
type Info struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Subcategory string `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Description string `json:"description" yaml:"description"`
}

// Formula documents one relationship a calculator computes.
type Formula struct {
	Name        string `json:"name" yaml:"name"`
	Expression  string `json:"expression" yaml:"expression"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Example is a worked set of inputs.
type Example struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Inputs      Inputs `json:"inputs" yaml:"inputs"`
}

// Result is the outcome of a successful calculation.
type Result struct {
	Calculator string            `json:"calculator" yaml:"calculator"`
	Values     any               `json:"values" yaml:"values"`
	Report     string            `json:"report" yaml:"report"`
	Validation validation.Result `json:"validation" yaml:"validation"`
}

// ValidationError is returned by Calculate when the inputs are rejected.
type ValidationError struct {
	Calculator string
	Result     validation.Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: invalid inputs: %s", e.Calculator, strings.Join(e.Result.Errors, "; "))
}

// Calculator is implemented by every registered calculator.
type Calculator interface {
	Info() Info
	Fields() []Field
	Formulas() []Formula
	Examples() []Example
	Validate(in Inputs) validation.Result
	Calculate(in Inputs) (*Result, error)
}

// Spec declares a calculator with typed inputs I and outputs O. Inputs are
// decoded from the raw map using mapstructure tags that match the field IDs.
type Spec[I any, O any] struct {
	Info     Info
	Fields   []Field
	Rules    []validation.Rule
	Formulas []Formula
	Examples []Example

	// Validate adds calculator specific checks after the schema and rules pass.
	Validate  func(in I, c *validation.Collector)
	Calculate func(in I) O
	Report    func(in I, out O) string
}

type typed[I any, O any] struct {
	spec  Spec[I, O]
	rules *validation.RuleSet
}

// New checks the spec and compiles its cross-field rules.
func New[I any, O any](spec Spec[I, O]) (Calculator, error) {
	if spec.Info.ID == "" {
		return nil, fmt.Errorf("calculator spec is missing an ID")
	}
	if spec.Calculate == nil || spec.Report == nil {
		return nil, fmt.Errorf("calculator %s: Calculate and Report are required", spec.Info.ID)
	}

	vars := make(map[string]validation.VarKind, len(spec.Fields))
	for _, f := range spec.Fields {
		if f.ID == "" {
			return nil, fmt.Errorf("calculator %s: field %q has no ID", spec.Info.ID, f.Name)
		}
		if _, dup := vars[f.ID]; dup {
			return nil, fmt.Errorf("calculator %s: duplicate field %s", spec.Info.ID, f.ID)
		}
		switch f.Type {
		case TypeNumber:
			vars[f.ID] = validation.Double
		case TypeSelect:
			if len(f.Options) == 0 {
				return nil, fmt.Errorf("calculator %s: select field %s has no options", spec.Info.ID, f.ID)
			}
			vars[f.ID] = validation.String
		case TypeBoolean:
			vars[f.ID] = validation.Bool
		default:
			return nil, fmt.Errorf("calculator %s: field %s has unknown type %q", spec.Info.ID, f.ID, f.Type)
		}
	}

	rules, err := validation.CompileRules(vars, spec.Rules)
	if err != nil {
		return nil, fmt.Errorf("calculator %s: %w", spec.Info.ID, err)
	}
	return &typed[I, O]{spec: spec, rules: rules}, nil
}

// MustNew is like New but panics on an invalid spec.
func MustNew[I any, O any](spec Spec[I, O]) Calculator {
	c, err := New(spec)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *typed[I, O]) Info() Info          { return c.spec.Info }
func (c *typed[I, O]) Fields() []Field     { return c.spec.Fields }
func (c *typed[I, O]) Formulas() []Formula { return c.spec.Formulas }
func (c *typed[I, O]) Examples() []Example { return c.spec.Examples }

func (c *typed[I, O]) Validate(in Inputs) validation.Result {
	res, _ := c.validate(in)
	return res
}

func (c *typed[I, O]) Calculate(in Inputs) (*Result, error) {
	res, decoded := c.validate(in)
	if !res.IsValid || decoded == nil {
		return nil, &ValidationError{Calculator: c.spec.Info.ID, Result: res}
	}
	out := c.spec.Calculate(*decoded)
	return &Result{
		Calculator: c.spec.Info.ID,
		Values:     out,
		Report:     c.spec.Report(*decoded, out),
		Validation: res,
	}, nil
}

func (c *typed[I, O]) validate(in Inputs) (validation.Result, *I) {
	var col validation.Collector

	canonical, unknown := canonicalize(in, c.spec.Fields)
	for _, key := range unknown {
		col.Warnf("unknown input %q ignored", key)
	}

	values := make(map[string]any, len(c.spec.Fields))
	for _, f := range c.spec.Fields {
		raw, present := canonical[f.ID]
		if present && isBlank(raw) {
			present = false
		}
		if !present && f.Default != nil {
			raw, present = f.Default, true
		}
		if !present {
			if f.Required {
				col.Required(f.Name, false)
			}
			continue
		}
		if v, ok := checkField(f, raw, &col); ok {
			values[f.ID] = v
		}
	}
	if col.HasErrors() {
		return col.Result(), nil
	}

	failed, err := c.rules.Evaluate(values)
	if err != nil {
		col.Errorf("cross-field validation failed: %v", err)
	}
	for _, msg := range failed {
		col.Errorf("%s", msg)
	}
	if col.HasErrors() {
		return col.Result(), nil
	}

	var decoded I
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &decoded,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		col.Errorf("failed to prepare input decoder: %v", err)
		return col.Result(), nil
	}
	if err := decoder.Decode(values); err != nil {
		col.Errorf("failed to decode inputs: %v", err)
		return col.Result(), nil
	}

	if c.spec.Validate != nil {
		c.spec.Validate(decoded, &col)
	}
	if col.HasErrors() {
		return col.Result(), nil
	}
	return col.Result(), &decoded
}

func checkField(f Field, raw any, col *validation.Collector) (any, bool) {
	switch f.Type {
	case TypeNumber:
		v, ok := toFloat(raw)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			col.Errorf("%s must be a valid number", f.Name)
			return nil, false
		}
		if f.Integer && v != math.Trunc(v) {
			col.Errorf("%s must be a whole number", f.Name)
			return nil, false
		}
		if f.Min != nil && v < *f.Min {
			col.Errorf("%s must be at least %s", f.Name, validation.FormatBound(*f.Min))
			return nil, false
		}
		if f.Max != nil && v > *f.Max {
			col.Errorf("%s must be at most %s", f.Name, validation.FormatBound(*f.Max))
			return nil, false
		}
		return v, true
	case TypeSelect:
		s, ok := toOption(raw)
		if !ok {
			col.Errorf("%s must be one of: %s", f.Name, strings.Join(f.OptionValues(), ", "))
			return nil, false
		}
		if !col.OneOf(f.Name, s, f.OptionValues()) {
			return nil, false
		}
		return s, true
	case TypeBoolean:
		b, ok := toBool(raw)
		if !ok {
			col.Errorf("%s must be true or false", f.Name)
			return nil, false
		}
		return b, true
	}
	return nil, false
}
