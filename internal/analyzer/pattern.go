package analyzer

import (
	"strings"

	"github.com/nao1215/querystats/internal/model"
)

const (
	// SearchBarField is the form field name the browser search bar records
	// its history under. Search bar queries match any URL parameter.
	SearchBarField = "searchbar-history"

	// fieldSuffixLen is how many trailing characters of a form field name
	// are used as the URL parameter filter.
	fieldSuffixLen = 7
)

// QueryField returns the URL parameter filter segment for a form field name.
//
// The search bar field maps to an empty segment. So does any field name
// shorter than the suffix length. Otherwise the last seven characters are used.
func QueryField(fieldName string) string {
	if fieldName == SearchBarField {
		return ""
	}
	runes := []rune(fieldName)
	if len(runes) < fieldSuffixLen {
		return ""
	}
	return string(runes[len(runes)-fieldSuffixLen:])
}

// QueryValue encodes a search value the way it appears in a URL query:
// spaces become "+".
func QueryValue(value string) string {
	return strings.ReplaceAll(value, " ", "+")
}

// SearchPattern returns the LIKE pattern matching URLs that carried the entry,
// in the form "%<field>=<value>%".
func SearchPattern(entry model.FormHistoryEntry) string {
	return "%" + QueryField(entry.FieldName) + "=" + QueryValue(entry.Value) + "%"
}
