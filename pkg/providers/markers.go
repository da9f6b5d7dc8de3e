package providers

import (
	"regexp"
	"strings"
)

var clockRe = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2}`)

// ContainsAny reports whether body contains any of the markers.
func ContainsAny(body string, markers ...string) bool {
	for _, m := range markers {
		if strings.Contains(body, m) {
			return true
		}
	}
	return false
}

// ClockTime returns the first H:MM:SS or HH:MM:SS in s, or "".
func ClockTime(s string) string {
	return clockRe.FindString(s)
}
