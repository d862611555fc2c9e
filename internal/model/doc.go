// Package model defines the core data structures used throughout querystats.
//
// This package contains the following main types:
//   - FormHistoryEntry: A remembered search-form submission
//   - VisitRecord: A single page visit from the browser's visit graph
//   - ResultNode: One node of the search trail tree produced by the analyzer
//   - Limits: The count, repeat, depth and breadth bounds of an analysis
//   - Report: A finished analysis run, as rendered and stored
//
// The history types are read-only snapshots of the browser databases. They
// are rebuilt on every run and never written back.
package model
