// Package config provides configuration structures and utilities for querystats.
// It defines the analysis limits, where browser history is read from,
// and report and run history preferences, plus the optional .querystats file.
package config
