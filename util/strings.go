package util

import (
	"strings"
)

const CutMoreStr = "<!-- more -->"

// CutMore returns the part of s before the first CutMoreStr and whether s has been cut.
func CutMore(s string) (string, bool) {
	if i := strings.Index(s, CutMoreStr); i >= 0 {
		return s[:i], true
	}
	return s, false
}

// Trunc truncates the input string to a specific length.
// It is UTF8-safe, but does not care for HTML.
func Trunc(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	var runes = 0
	for i := range s {
		if runes == maxRunes {
			return strings.TrimSpace(s[:i]) + "…"
		}
		runes++
	}
	return s
}
