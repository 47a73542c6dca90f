// Package datekey produces the canonical "MM-DD" day key used for all
// birthday matching. The key derives from the local calendar date: if it is
// June 15th on the user's wall clock, it is June 15th for matching purposes,
// regardless of what day it is in UTC.
package datekey

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Canonical is the pattern every stored birthday must satisfy.
var Canonical = regexp.MustCompile(`^\d{2}-\d{2}$`)

// Loose is the pattern accepted from tabular sources, where month and day
// may be one or two digits.
var Loose = regexp.MustCompile(`^\d{1,2}-\d{1,2}$`)

// Key formats t's local month and day as a zero-padded "MM-DD" string.
func Key(t time.Time) string {
	return fmt.Sprintf("%02d-%02d", int(t.Month()), t.Day())
}

// Today returns the key for the clock's current local date.
func Today(c Clock) string {
	return Key(c.Now())
}

// Normalize trims s and zero-pads a loose "M-D" value to canonical "MM-DD".
// It reports false when s does not match the loose pattern; the input is
// rejected rather than coerced.
func Normalize(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !Loose.MatchString(s) {
		return "", false
	}
	month, day, _ := strings.Cut(s, "-")
	if len(month) == 1 {
		month = "0" + month
	}
	if len(day) == 1 {
		day = "0" + day
	}
	return month + "-" + day, true
}
