package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/iwvelando/finance-calculators/internal/batch"
	"github.com/iwvelando/finance-calculators/internal/config"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/optimization"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/report"
	"github.com/iwvelando/finance-calculators/pkg/validation"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// errInvalidInputs signals a rejected calculation whose details were already
// printed.
var errInvalidInputs = errors.New("inputs failed validation")

// inputFlags collects calculator inputs from the command line.
type inputFlags struct {
	pairs   []string
	file    string
	example string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.pairs, "input", "i", nil, "input as key=value (repeatable)")
	cmd.Flags().StringVar(&f.file, "inputs-file", "", "YAML or JSON file of inputs")
	cmd.Flags().StringVar(&f.example, "example", "", "start from the named example's inputs")
}

// collect merges, in increasing precedence, example inputs, the inputs file
// and key=value pairs. Keys are matched to field IDs before merging, so a
// later layer overrides an earlier one whatever the case of its keys.
func (f *inputFlags) collect(calc calculator.Calculator) (calculator.Inputs, error) {
	inputs := calculator.Inputs{}

	if f.example != "" {
		found := false
		for _, ex := range calc.Examples() {
			if strings.EqualFold(ex.Name, f.example) {
				for k, v := range ex.Inputs {
					inputs[k] = v
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("calculator %s has no example %q", calc.Info().ID, f.example)
		}
	}

	if f.file != "" {
		fromFile, err := readInputsFile(f.file)
		if err != nil {
			return nil, err
		}
		mergeInputs(calc, inputs, fromFile)
	}

	pairs, err := parsePairs(f.pairs)
	if err != nil {
		return nil, err
	}
	mergeInputs(calc, inputs, pairs)
	return inputs, nil
}

// mergeInputs copies layer into dst under canonical field IDs. Unknown keys
// are kept as given so validation can warn about them.
func mergeInputs(calc calculator.Calculator, dst, layer calculator.Inputs) {
	known, unknown := calculator.Canonicalize(calc, layer)
	for k, v := range known {
		dst[k] = v
	}
	for _, k := range unknown {
		dst[k] = layer[k]
	}
}

func readInputsFile(path string) (calculator.Inputs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file: %w", err)
	}
	var inputs calculator.Inputs
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse inputs file %s: %w", path, err)
	}
	if nested, ok := inputs["inputs"].(map[string]any); ok && len(inputs) == 1 {
		inputs = nested
	}
	return inputs, nil
}

// parsePairs splits key=value arguments. Values stay strings and are coerced
// by calculator validation.
func parsePairs(pairs []string) (calculator.Inputs, error) {
	inputs := make(calculator.Inputs, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid input %q: expected key=value", pair)
		}
		inputs[key] = strings.TrimSpace(value)
	}
	return inputs, nil
}

func validateCmd(a *app) *cobra.Command {
	var inputs inputFlags
	var outputFormat string
	cmd := &cobra.Command{
		Use:   "validate <calculator>",
		Short: "Validate inputs without calculating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			in, err := inputs.collect(calc)
			if err != nil {
				return err
			}

			res := calc.Validate(in)
			a.logger.Debug("validated inputs",
				zap.String("op", "main.validate"),
				zap.String("calculator", calc.Info().ID),
				zap.Bool("valid", res.IsValid),
			)
			if err := writeDocument(cmd.OutOrStdout(), outputFormat, validationDocument(calc, res), res); err != nil {
				return err
			}
			if !res.IsValid {
				return errInvalidInputs
			}
			return nil
		},
	}
	inputs.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", constants.OutputFormatMarkdown, "output format: markdown, pretty, json, yaml")
	return cmd
}

func validationDocument(calc calculator.Calculator, res validation.Result) string {
	doc := report.New(calc.Info().Name + " Validation")
	if res.IsValid {
		doc.Paragraph("Inputs are valid.")
	} else {
		doc.Section("Errors").Bullets(res.Errors...)
	}
	if len(res.Warnings) > 0 {
		doc.Section("Warnings").Bullets(res.Warnings...)
	}
	return doc.String()
}

func calcCmd(a *app) *cobra.Command {
	var inputs inputFlags
	var outputFormat string
	var directive optimization.Directive
	cmd := &cobra.Command{
		Use:   "calc <calculator>",
		Short: "Run one calculator and print its report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}
			calc, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			in, err := inputs.collect(calc)
			if err != nil {
				return err
			}

			calculation := config.Calculation{Name: calc.Info().Name, Calculator: calc.Info().ID, Inputs: in}
			if directive.Field != "" {
				d := directive
				calculation.Optimize = &d
			}
			outcomes, err := batch.Run(a.logger, a.registry, config.Configuration{Calculations: []config.Calculation{calculation}})
			if err != nil {
				return err
			}
			if err := output.Write(cmd.OutOrStdout(), outputFormat, outcomes); err != nil {
				return err
			}
			if batch.Failed(outcomes) > 0 {
				return errInvalidInputs
			}
			return nil
		},
	}
	inputs.register(cmd)
	cmd.Flags().StringVarP(&outputFormat, "format", "f", constants.OutputFormatMarkdown, "output format: markdown, pretty, json, yaml, csv")
	cmd.Flags().StringVar(&directive.Field, "optimize", "", "numeric input to goal-seek")
	cmd.Flags().StringVar(&directive.Output, "output", "", "numeric output the optimized input should drive")
	cmd.Flags().Float64Var(&directive.Target, "target", 0, "target value for --output")
	cmd.Flags().Float64Var(&directive.Min, "min", 0, "lower search bound for --optimize")
	cmd.Flags().Float64Var(&directive.Max, "max", 0, "upper search bound for --optimize")
	cmd.Flags().Float64Var(&directive.Tolerance, "tolerance", constants.DefaultOptimizerTolerance, "acceptable distance from --target")
	cmd.MarkFlagsRequiredTogether("optimize", "output", "max")
	return cmd
}
