package infra

import "strings"

// containsAny reports whether s contains any of the marker tokens.
func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// markerValue extracts the value of a "MARKER : value" line. When the line
// carries one of the markers, the text after the first colon is returned,
// trimmed. Paths keep their own drive-letter colon intact because only the
// first colon splits.
func markerValue(line string, markers []string) (string, bool) {
	if !containsAny(line, markers) {
		return "", false
	}
	_, value, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	return strings.TrimSpace(value), true
}
