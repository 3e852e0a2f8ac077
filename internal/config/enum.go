package config

import (
	"fmt"
	"strings"
)

// parseEnum returns the position of text in names, ignoring case.
func parseEnum(kind string, names []string, text []byte) (int, error) {
	for i, name := range names {
		if strings.EqualFold(name, string(text)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s: %s (want one of %s)", kind, text, strings.Join(names, ", "))
}

// enumName returns names[i], or "UNKNOWN" when i is out of range.
func enumName(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "UNKNOWN"
	}
	return names[i]
}
