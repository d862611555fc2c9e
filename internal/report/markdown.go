package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"

	"github.com/nao1215/querystats/internal/model"
)

// linkTextEscaper escapes characters that would end Markdown link text early.
var linkTextEscaper = strings.NewReplacer(`\`, `\\`, "[", `\[`, "]", `\]`)

// headingEscaper escapes characters with inline or heading meaning in
// Markdown, and folds line breaks so a heading stays on one line.
var headingEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	">", `\>`,
	"#", `\#`,
	"|", `\|`,
	"~", `\~`,
	"\r\n", " ",
	"\n", " ",
	"\r", " ",
)

// MarkdownWriter outputs reports in Markdown format: a table of run
// properties, then one section per search with its trails as nested lists.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report in Markdown format.
func (w *MarkdownWriter) Write(report *model.Report) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)

	if !report.HasResults() {
		md.Note("No visits matched a recent search. Try a larger count or repeat limit.")
		md.PlainText("")
	}
	for _, group := range groupBySearch(report.Results) {
		w.writeSearch(md, group)
	}

	w.writeFooter(md, report)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run properties table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.Report) {
	md.H1("Search Trails")
	md.PlainText("")

	rows := [][]string{}
	if report.Profile != "" {
		rows = append(rows, []string{"Profile", "`" + report.Profile + "`"})
	}
	if !report.GeneratedAt.IsZero() {
		rows = append(rows, []string{"Generated", report.GeneratedAt.Format(timeLayout)})
	}
	if report.ID != "" {
		rows = append(rows, []string{"Run", "`" + report.ID + "`"})
	}
	limits := report.Limits
	rows = append(rows,
		[]string{"Count", w.printer.Sprintf("%d", limits.MaxCount)},
		[]string{"Repeat", w.printer.Sprintf("%d", limits.MaxRepeat)},
		[]string{"Depth", w.printer.Sprintf("%d", limits.MaxDepth)},
		[]string{"Breadth", w.printer.Sprintf("%d", limits.MaxBreadth)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSearch writes the section of one search value.
func (w *MarkdownWriter) writeSearch(md *markdown.Markdown, visits []model.ResultNode) {
	md.H2(headingEscaper.Replace(visits[0].Label))
	md.PlainText("")

	for _, visit := range visits {
		md.PlainText("- " + markdown.Link(linkTextEscaper.Replace(visit.Annotation), visit.URL))
		for _, child := range visit.Children {
			w.writeTrail(md, child, 1)
		}
	}
	md.PlainText("")
}

// writeTrail writes a trail node as a list item nested depth levels deep.
func (w *MarkdownWriter) writeTrail(md *markdown.Markdown, node model.ResultNode, depth int) {
	item := strings.Repeat("  ", depth) + "- " + markdown.Link(linkTextEscaper.Replace(nodeLabel(node)), node.URL)
	if node.Annotation != "" {
		item += " " + node.Annotation
	}
	md.PlainText(item)

	for _, child := range node.Children {
		w.writeTrail(md, child, depth+1)
	}
}

// writeFooter writes the report summary.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown, report *model.Report) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*%s*", w.summary(report.Stats))
}

// groupBySearch splits top-level nodes into runs of the same search value.
func groupBySearch(results []model.ResultNode) [][]model.ResultNode {
	var groups [][]model.ResultNode
	for i, node := range results {
		if i == 0 || node.Label != results[i-1].Label {
			groups = append(groups, nil)
		}
		last := len(groups) - 1
		groups[last] = append(groups[last], node)
	}
	return groups
}
