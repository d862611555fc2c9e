package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseLimit converts user input to a limit.
//
// Leading whitespace and a sign are accepted and the longest run of digits
// that follows is used, so "12abc" is 12. Input without leading digits,
// and any negative value, is 0. Values too large for an int are capped.
func ParseLimit(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")

	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// Only a range error is possible on a run of digits.
		return math.MaxInt
	}
	return n
}

// Limit is a limit value in the configuration file. It accepts numbers
// and strings, both converted with ParseLimit.
type Limit int

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *Limit) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: limit must be a number", node.Line)
	}
	*l = Limit(ParseLimit(node.Value))
	return nil
}
