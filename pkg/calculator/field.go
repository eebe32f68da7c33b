package calculator

import "github.com/iwvelando/finance-calculators/pkg/format"

// FieldType identifies how an input is entered and coerced.
type FieldType string

const (
	// TypeNumber is a numeric input.
	TypeNumber FieldType = "number"
	// TypeSelect is a choice among fixed options.
	TypeSelect FieldType = "select"
	// TypeBoolean is a yes/no input.
	TypeBoolean FieldType = "boolean"
)

// Option is one choice of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes one calculator input.
type Field struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Type        FieldType `json:"type" yaml:"type"`
	Unit        string    `json:"unit,omitempty" yaml:"unit,omitempty"`
	Required    bool      `json:"required" yaml:"required"`
	Integer     bool      `json:"integer,omitempty" yaml:"integer,omitempty"`
	Min         *float64  `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	Default     any       `json:"default,omitempty" yaml:"default,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
}

// Number declares a numeric field.
func Number(id, name, unit string) Field {
	return Field{ID: id, Name: name, Type: TypeNumber, Unit: unit}
}

// Select declares a select field over the given option values. Labels are
// derived from the values.
func Select(id, name string, values ...string) Field {
	options := make([]Option, len(values))
	for i, v := range values {
		options[i] = Option{Value: v, Label: format.Label(v)}
	}
	return Field{ID: id, Name: name, Type: TypeSelect, Options: options}
}

// SelectOptions declares a select field with explicit labels.
func SelectOptions(id, name string, options ...Option) Field {
	return Field{ID: id, Name: name, Type: TypeSelect, Options: options}
}

// Boolean declares a yes/no field.
func Boolean(id, name string) Field {
	return Field{ID: id, Name: name, Type: TypeBoolean}
}

// Req marks the field as required.
func (f Field) Req() Field {
	f.Required = true
	return f
}

// Int requires a whole number.
func (f Field) Int() Field {
	f.Integer = true
	return f
}

// Range bounds a numeric field to [lo, hi].
func (f Field) Range(lo, hi float64) Field {
	f.Min = &lo
	f.Max = &hi
	return f
}

// AtLeast sets a lower bound.
func (f Field) AtLeast(lo float64) Field {
	f.Min = &lo
	return f
}

// WithDefault sets the value used when the input is absent.
func (f Field) WithDefault(v any) Field {
	f.Default = v
	return f
}

// Describe attaches help text.
func (f Field) Describe(text string) Field {
	f.Description = text
	return f
}

// OptionValues returns the allowed values of a select field.
func (f Field) OptionValues() []string {
	values := make([]string, len(f.Options))
	for i, o := range f.Options {
		values[i] = o.Value
	}
	return values
}
