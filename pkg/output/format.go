// Package output provides utilities for formatting and displaying batch results.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/iwvelando/finance-calculators/internal/batch"
	"github.com/iwvelando/finance-calculators/pkg/calculator"
	"github.com/iwvelando/finance-calculators/pkg/constants"
	"github.com/iwvelando/finance-calculators/pkg/format"
	"github.com/iwvelando/finance-calculators/pkg/report"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// DefaultWidth is the word wrap width for pretty output.
const DefaultWidth = 100

const separator = "\n---\n\n"

// Write renders outcomes to w in the named format.
func Write(w io.Writer, outputFormat string, outcomes []batch.Outcome) error {
	switch outputFormat {
	case constants.OutputFormatMarkdown, "":
		return MarkdownFormat(w, outcomes)
	case constants.OutputFormatPretty:
		return PrettyFormat(w, outcomes, DefaultWidth)
	case constants.OutputFormatJSON:
		return JSONFormat(w, outcomes)
	case constants.OutputFormatYAML:
		return YAMLFormat(w, outcomes)
	case constants.OutputFormatCSV:
		return CsvFormat(w, outcomes)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// Markdown joins the report of every outcome into one document. Failed
// outcomes are described in place of their report.
func Markdown(outcomes []batch.Outcome) string {
	docs := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		docs = append(docs, document(o))
	}
	return strings.Join(docs, separator)
}

func document(o batch.Outcome) string {
	if !o.Succeeded() {
		b := report.New(o.Name).
			Paragraph("**Calculator:** %s", o.Calculator).
			Paragraph("Calculation failed: %s", o.Error).
			Bullets(o.Validation.Errors...)
		return b.String()
	}

	doc := o.Result.Report
	var extra report.Builder
	if o.Optimization != nil {
		s := o.Optimization
		extra.Section("Optimization").KeyValues(
			report.KV("Input", s.Field),
			report.KV("Original Value", strconv.FormatFloat(s.Original, 'f', -1, 64)),
			report.KV("Optimized Value", strconv.FormatFloat(s.Value, 'f', -1, 64)),
			report.KV("Target "+s.Output, strconv.FormatFloat(s.Target, 'f', -1, 64)),
			report.KV("Achieved "+s.Output, strconv.FormatFloat(s.Achieved, 'f', -1, 64)),
			report.KV("Converged", format.Bool(s.Converged)),
		).Bullets(s.Notes...)
	}
	if len(o.Validation.Warnings) > 0 {
		extra.Section("Warnings").Bullets(o.Validation.Warnings...)
	}
	if tail := extra.String(); strings.TrimSpace(tail) != "" {
		doc = strings.TrimRight(doc, "\n") + "\n\n" + tail
	}
	return doc
}

// MarkdownFormat writes the raw Markdown reports.
func MarkdownFormat(w io.Writer, outcomes []batch.Outcome) error {
	_, err := io.WriteString(w, Markdown(outcomes))
	return err
}

// PrettyFormat renders the Markdown reports for a terminal, wrapped at width,
// followed by a one line summary.
func PrettyFormat(w io.Writer, outcomes []batch.Outcome, width int) error {
	if err := RenderMarkdown(w, Markdown(outcomes), width); err != nil {
		return err
	}
	p := message.NewPrinter(language.English)
	_, err := p.Fprintf(w, "%d calculations, %d failed\n", len(outcomes), batch.Failed(outcomes))
	return err
}

// RenderMarkdown styles a Markdown document for a terminal, wrapped at width.
func RenderMarkdown(w io.Writer, doc string, width int) error {
	if width <= 0 {
		width = DefaultWidth
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	rendered, err := renderer.Render(doc)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}
	_, err = io.WriteString(w, rendered)
	return err
}

// JSONFormat writes the outcomes as an indented JSON array.
func JSONFormat(w io.Writer, outcomes []batch.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if outcomes == nil {
		outcomes = []batch.Outcome{}
	}
	return enc.Encode(outcomes)
}

// YAMLFormat writes the outcomes as a YAML sequence. Output values are
// written through their JSON names.
func YAMLFormat(w io.Writer, outcomes []batch.Outcome) error {
	raw, err := json.Marshal(outcomes)
	if err != nil {
		return fmt.Errorf("failed to encode outcomes: %w", err)
	}
	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to convert outcomes: %w", err)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

// CsvFormat writes one row per numeric output of each successful outcome.
func CsvFormat(w io.Writer, outcomes []batch.Outcome) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"calculation", "calculator", "metric", "value"}); err != nil {
		return err
	}
	for _, o := range outcomes {
		if !o.Succeeded() {
			continue
		}
		metrics, err := calculator.Metrics(o.Result.Values)
		if err != nil {
			return fmt.Errorf("calculation %s: %w", o.Name, err)
		}
		for _, name := range calculator.MetricNames(metrics) {
			row := []string{o.Name, o.Calculator, name, strconv.FormatFloat(metrics[name], 'f', -1, 64)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
