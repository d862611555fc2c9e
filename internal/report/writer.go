package report

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/querystats/internal/model"
)

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the report to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(report *model.Report) (int, error)
}

// timeLayout is how report timestamps are shown.
const timeLayout = "2006-01-02 15:04:05 MST"

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer

	// printer formats counts with thousands separators.
	printer *message.Printer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{
		output:  output,
		printer: message.NewPrinter(language.English),
	}
}

// summary returns the one-line summary of a report, e.g.
// "3 visits for 2 searches, 5 clicks, deepest trail 2".
func (b baseWriter) summary(stats model.Stats) string {
	return b.printer.Sprintf("%d %s for %d %s, %d %s, deepest trail %d",
		stats.Visits, plural(stats.Visits, "visit", "visits"),
		stats.Searches, plural(stats.Searches, "search", "searches"),
		stats.Clicks, plural(stats.Clicks, "click", "clicks"),
		stats.DeepestTrail,
	)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// nodeLabel returns what is shown for a node. Pages without a title
// are shown by their URL.
func nodeLabel(node model.ResultNode) string {
	if node.Label == "" {
		return node.URL
	}
	return node.Label
}
