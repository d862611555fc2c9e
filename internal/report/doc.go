// Package report renders analysis reports.
//
// This package contains writers for different output formats:
//   - SimpleWriter: indented text tree for terminal display
//   - JSONWriter: structured JSON output for tool integration
//   - MarkdownWriter: Markdown for notes and sharing
//
// Writers implement the Writer interface, allowing them to be used
// interchangeably by the analyze and history commands.
package report
