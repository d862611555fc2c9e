// Package main provides the entry point for the querystats CLI.
//
// querystats shows what a Firefox user searched for and which pages they
// clicked through to afterwards, built from the browser's form history and
// visit history.
//
// Usage:
//
//	querystats analyze
//	querystats analyze --profile ~/.mozilla/firefox/abcd1234.default-release
//	querystats history
//
// See --help for all available options.
package main

// main is the entry point for querystats.
func main() {
	Execute()
}
