package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/term"

	"github.com/nao1215/querystats/internal/config"
	"github.com/nao1215/querystats/internal/model"
	"github.com/nao1215/querystats/internal/report"
)

// outputReport writes the report in the configured format, to the report
// file when one is set and to stdout otherwise.
func outputReport(cfg *config.Config, r *model.Report, stdout io.Writer) error {
	if cfg.ReportFile == "" {
		return writeReport(cfg, r, stdout)
	}

	// Create directories if they don't exist
	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports hold browsing history, so only the owner may read them.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return writeAndClose(cfg, r, f)
}

// writeAndClose writes the report to w and closes it. A close error is
// returned when the write itself succeeded.
func writeAndClose(cfg *config.Config, r *model.Report, w io.WriteCloser) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	return writeReport(cfg, r, w)
}

// writeReport writes the report with the writer for the configured format.
func writeReport(cfg *config.Config, r *model.Report, w io.Writer) error {
	if _, err := newWriter(cfg, w).Write(r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// newWriter returns the report writer for the configured format.
func newWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		width := cfg.Width
		if width == 0 {
			width = terminalWidth(output)
		}
		return report.NewSimpleWriter(output,
			report.WithWidth(width),
			report.WithURLs(cfg.ShowURLs),
		)
	}
}

// terminalWidth returns the width of the terminal w writes to, or 0 when w
// is not a terminal.
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // file descriptors fit in int
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // file descriptors fit in int
	if err != nil {
		return 0
	}
	return width
}
