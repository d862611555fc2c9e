package report

import (
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/nao1215/querystats/internal/model"
)

// indentUnit is the indentation added per trail level.
const indentUnit = "  "

// SimpleWriter outputs the result tree as indented plain text, one node per
// line, with the annotation after the label.
type SimpleWriter struct {
	baseWriter

	// width is the maximum display width of a line. 0 disables truncation.
	width int

	// showURLs adds the URL of every node on its own line.
	showURLs bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithWidth truncates lines to the given display width.
// East Asian wide characters count as two columns.
func WithWidth(width int) SimpleWriterOption {
	return func(w *SimpleWriter) {
		if width > 0 {
			w.width = width
		}
	}
}

// WithURLs prints the URL below every node.
func WithURLs(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showURLs = show
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the report in human-readable format.
func (w *SimpleWriter) Write(report *model.Report) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)

	if !report.HasResults() {
		w.writeLine(&sb, "No visits matched a recent search.")
	}
	for _, node := range report.Results {
		w.writeNode(&sb, node, 0)
	}

	sb.WriteString("\n")
	w.writeLine(&sb, w.summary(report.Stats))

	return io.WriteString(w.output, sb.String())
}

// writeHeader writes the profile, time and limits of the run.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.Report) {
	if report.Profile != "" {
		w.writeLine(sb, "Profile:   "+report.Profile)
	}
	if !report.GeneratedAt.IsZero() {
		w.writeLine(sb, "Generated: "+report.GeneratedAt.Format(timeLayout))
	}
	limits := report.Limits
	w.writeLine(sb, w.printer.Sprintf("Limits:    count %d, repeat %d, depth %d, breadth %d",
		limits.MaxCount, limits.MaxRepeat, limits.MaxDepth, limits.MaxBreadth))
	sb.WriteString("\n")
}

// writeNode writes node and its subtree, depth levels deep.
func (w *SimpleWriter) writeNode(sb *strings.Builder, node model.ResultNode, depth int) {
	indent := strings.Repeat(indentUnit, depth)

	line := indent + nodeLabel(node)
	if node.Annotation != "" {
		line += "  " + node.Annotation
	}
	w.writeLine(sb, line)

	if w.showURLs && node.Label != "" {
		w.writeLine(sb, indent+indentUnit+"<"+node.URL+">")
	}

	for _, child := range node.Children {
		w.writeNode(sb, child, depth+1)
	}
}

// writeLine writes s truncated to the configured width.
func (w *SimpleWriter) writeLine(sb *strings.Builder, s string) {
	if w.width > 0 {
		s = runewidth.Truncate(s, w.width, "…")
	}
	sb.WriteString(s)
	sb.WriteString("\n")
}
