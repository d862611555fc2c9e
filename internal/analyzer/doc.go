// Package analyzer reconstructs what a user clicked on after searching.
//
// The Analyzer joins remembered search submissions (form history) with the
// browser's visit graph. For every recent search it finds the visits whose
// URL carried that search, then follows the "navigated from" edges of the
// visit graph to list the pages clicked afterwards, bounded by
// model.Limits.
//
// Redirect hops (visits without a title) are walked through but never
// reported; they do not count as a click level but they do use up one of
// the follow-up rows fetched for their parent.
//
// The Analyzer only needs a Store. The SQLite implementation lives in the
// database package; tests use an in-memory Store.
package analyzer
