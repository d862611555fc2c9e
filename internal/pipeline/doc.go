// Package pipeline runs one analysis as a sequence of steps.
//
// A run locates the browser profile, optionally snapshots its databases,
// opens them, analyzes the search trails and stores the report in the run
// history. Each stage is a Step that reads and updates the shared State.
// Resources a step acquires are released by State.Close, in reverse order
// of acquisition, whether or not the run succeeded.
package pipeline
