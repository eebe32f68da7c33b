package validation

import (
	"fmt"
	"sort"

	"github.com/google/cel-go/cel"
)

// ruleCostLimit bounds the evaluation cost of a single cross-field rule.
const ruleCostLimit = 10000

// VarKind is the CEL type a calculator field is exposed as.
type VarKind int

const (
	// Double exposes a numeric field.
	Double VarKind = iota
	// String exposes a select field.
	String
	// Bool exposes a boolean field.
	Bool
)

// Rule is a cross-field consistency check. Expr must evaluate to true for
// valid inputs; Message is reported otherwise.
type Rule struct {
	Expr    string
	Message string
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// RuleSet is a compiled, immutable list of rules that is safe for concurrent use.
type RuleSet struct {
	vars  map[string]VarKind
	rules []compiledRule
}

// CompileRules type-checks every rule against the declared variables.
func CompileRules(vars map[string]VarKind, rules []Rule) (*RuleSet, error) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := make([]cel.EnvOption, 0, len(names))
	for _, name := range names {
		var t *cel.Type
		switch vars[name] {
		case Double:
			t = cel.DoubleType
		case String:
			t = cel.StringType
		case Bool:
			t = cel.BoolType
		default:
			return nil, fmt.Errorf("variable %s: unsupported kind %d", name, vars[name])
		}
		opts = append(opts, cel.Variable(name, t))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create rule environment: %w", err)
	}

	rs := &RuleSet{vars: vars, rules: make([]compiledRule, 0, len(rules))}
	for _, rule := range rules {
		ast, issues := env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Expr, issues.Err())
		}
		if ast.OutputType().String() != cel.BoolType.String() {
			return nil, fmt.Errorf("rule %q must evaluate to bool, got %s", rule.Expr, ast.OutputType())
		}
		prg, err := env.Program(ast, cel.CostLimit(ruleCostLimit))
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Expr, err)
		}
		rs.rules = append(rs.rules, compiledRule{rule: rule, program: prg})
	}
	return rs, nil
}

// Len returns the number of compiled rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}

// Evaluate runs every rule and returns the messages of the rules that failed.
func (rs *RuleSet) Evaluate(values map[string]any) ([]string, error) {
	if rs == nil {
		return nil, nil
	}
	activation := make(map[string]any, len(rs.vars))
	for name, kind := range rs.vars {
		v, ok := values[name]
		if !ok {
			v = zeroValue(kind)
		}
		activation[name] = v
	}

	var failed []string
	for _, cr := range rs.rules {
		out, _, err := cr.program.Eval(activation)
		if err != nil {
			return failed, fmt.Errorf("rule %q: %w", cr.rule.Expr, err)
		}
		ok, isBool := out.Value().(bool)
		if !isBool {
			return failed, fmt.Errorf("rule %q returned %T, expected bool", cr.rule.Expr, out.Value())
		}
		if !ok {
			failed = append(failed, cr.rule.Message)
		}
	}
	return failed, nil
}

func zeroValue(kind VarKind) any {
	switch kind {
	case String:
		return ""
	case Bool:
		return false
	default:
		return 0.0
	}
}
