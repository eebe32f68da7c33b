// Package report builds the Markdown documents returned by calculators.
package report

import (
	"fmt"
	"strings"
)

// Builder accumulates a Markdown document.
type Builder struct {
	sb strings.Builder
}

// New starts a document with a top-level title.
func New(title string) *Builder {
	b := &Builder{}
	b.Heading(1, title)
	return b
}

// Heading writes a heading at the given level.
func (b *Builder) Heading(level int, text string) *Builder {
	if level < 1 {
		level = 1
	}
	b.ensureGap()
	fmt.Fprintf(&b.sb, "%s %s\n\n", strings.Repeat("#", level), text)
	return b
}

// Section writes a second-level heading.
func (b *Builder) Section(text string) *Builder {
	return b.Heading(2, text)
}

// Paragraph writes a paragraph of text.
func (b *Builder) Paragraph(format string, args ...any) *Builder {
	b.ensureGap()
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteString("\n\n")
	return b
}

// Bullets writes an unordered list. Empty input writes nothing.
func (b *Builder) Bullets(items ...string) *Builder {
	if len(items) == 0 {
		return b
	}
	b.ensureGap()
	for _, item := range items {
		fmt.Fprintf(&b.sb, "- %s\n", item)
	}
	b.sb.WriteString("\n")
	return b
}

// KeyValues writes a two column table of labelled values.
func (b *Builder) KeyValues(rows ...[2]string) *Builder {
	table := make([][]string, len(rows))
	for i, row := range rows {
		table[i] = []string{row[0], row[1]}
	}
	return b.Table([]string{"Metric", "Value"}, table)
}

// Table writes a table with the given header and rows.
func (b *Builder) Table(header []string, rows [][]string) *Builder {
	if len(header) == 0 {
		return b
	}
	b.ensureGap()
	b.writeRow(header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	b.writeRow(sep)
	for _, row := range rows {
		b.writeRow(row)
	}
	b.sb.WriteString("\n")
	return b
}

// KV is shorthand for one KeyValues row.
func KV(label, value string) [2]string {
	return [2]string{label, value}
}

func (b *Builder) writeRow(cells []string) {
	escaped := make([]string, len(cells))
	for i, c := range cells {
		escaped[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	fmt.Fprintf(&b.sb, "| %s |\n", strings.Join(escaped, " | "))
}

func (b *Builder) ensureGap() {
	s := b.sb.String()
	if s != "" && !strings.HasSuffix(s, "\n\n") {
		b.sb.WriteString("\n")
	}
}

// String returns the document with a single trailing newline.
func (b *Builder) String() string {
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}
