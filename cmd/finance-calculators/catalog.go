package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/output"
	"github.com/iwvelando/finance-calculators/pkg/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func listCmd(a *app) *cobra.Command {
	var outputFormat string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available calculators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := a.registry.List()
			doc := report.New("Calculators")
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				rows = append(rows, []string{info.ID, info.Name, format.Label(info.Subcategory)})
			}
			doc.Table([]string{"ID", "Name", "Category"}, rows)
			return writeDocument(cmd.OutOrStdout(), outputFormat, doc.String(), infos)
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "format", "f", constants.OutputFormatMarkdown, "output format: markdown, pretty, json, yaml")
	return cmd
}

func describeCmd(a *app) *cobra.Command {
	var outputFormat string
	cmd := &cobra.Command{
		Use:   "describe <calculator>",
		Short: "Describe a calculator's inputs, formulas and examples",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			detail := map[string]any{
				"info":     calc.Info(),
				"fields":   calc.Fields(),
				"formulas": calc.Formulas(),
				"examples": calc.Examples(),
			}
			return writeDocument(cmd.OutOrStdout(), outputFormat, describe(calc), detail)
		},
	}
	cmd.Flags().StringVarP(&outputFormat, "format", "f", constants.OutputFormatMarkdown, "output format: markdown, pretty, json, yaml")
	return cmd
}

func schemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <calculator>",
		Short: "Print a calculator's JSON Schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			calc, err := a.lookup(args[0])
			if err != nil {
				return err
			}
			raw, err := calculator.JSONSchema(calc)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(raw)
			return err
		},
	}
}

func (a *app) lookup(id string) (calculator.Calculator, error) {
	calc, ok := a.registry.Get(id)
	if !ok {
		return nil, fmt.Errorf("unknown calculator %q; run list to see the available calculators", id)
	}
	return calc, nil
}

// describe renders a calculator's reference page as Markdown.
func describe(calc calculator.Calculator) string {
	info := calc.Info()
	doc := report.New(info.Name).
		Paragraph("%s", info.Description).
		Paragraph("**ID:** %s | **Category:** %s", info.ID, format.Label(strings.TrimSpace(info.Category+" "+info.Subcategory)))

	rows := make([][]string, 0, len(calc.Fields()))
	for _, f := range calc.Fields() {
		rows = append(rows, []string{f.ID, f.Name, fieldType(f), fieldRange(f), fieldDefault(f), format.Bool(f.Required)})
	}
	doc.Section("Inputs").Table([]string{"ID", "Name", "Type", "Range", "Default", "Required"}, rows)

	formulas := make([]string, 0, len(calc.Formulas()))
	for _, f := range calc.Formulas() {
		formulas = append(formulas, fmt.Sprintf("**%s:** `%s`", f.Name, f.Expression))
	}
	if len(formulas) > 0 {
		doc.Section("Formulas").Bullets(formulas...)
	}

	examples := make([]string, 0, len(calc.Examples()))
	for _, ex := range calc.Examples() {
		line := "**" + ex.Name + "**"
		if ex.Description != "" {
			line += ": " + ex.Description
		}
		examples = append(examples, line)
	}
	if len(examples) > 0 {
		doc.Section("Examples").Bullets(examples...)
	}
	return doc.String()
}

func fieldType(f calculator.Field) string {
	switch {
	case f.Type == calculator.TypeSelect:
		return strings.Join(f.OptionValues(), ", ")
	case f.Integer:
		return "whole number"
	case f.Unit != "":
		return string(f.Type) + " (" + f.Unit + ")"
	default:
		return string(f.Type)
	}
}

func fieldRange(f calculator.Field) string {
	bound := func(v *float64) string {
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'f', -1, 64)
	}
	switch {
	case f.Min != nil && f.Max != nil:
		return bound(f.Min) + " to " + bound(f.Max)
	case f.Min != nil:
		return "at least " + bound(f.Min)
	case f.Max != nil:
		return "at most " + bound(f.Max)
	default:
		return ""
	}
}

func fieldDefault(f calculator.Field) string {
	if f.Default == nil {
		return ""
	}
	return fmt.Sprint(f.Default)
}

// writeDocument prints doc as Markdown or styled for a terminal, or data as
// JSON or YAML.
func writeDocument(w io.Writer, outputFormat, doc string, data any) error {
	switch outputFormat {
	case constants.OutputFormatMarkdown, "":
		_, err := io.WriteString(w, doc)
		return err
	case constants.OutputFormatPretty:
		return output.RenderMarkdown(w, doc, output.DefaultWidth)
	case constants.OutputFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case constants.OutputFormatYAML:
		raw, err := json.Marshal(data)
		if err != nil {
			return err
		}
		var generic any
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return err
		}
		return yaml.NewEncoder(w).Encode(generic)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}
