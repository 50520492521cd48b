// Package segment splits an accumulating completion buffer into the three
// numbered drafts ("1.", "2.", "3.") the prompt asks for.
//
// Parsing is tolerant of partial arrival: it can be called on every chunk
// and always returns the best current view. Nothing is produced until the
// first marker "1." has appeared, which keeps any preamble the model emits
// out of the drafts.
package segment

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Count is the number of drafts a buffer is split into.
const Count = 3

// FirstMarker opens the gate for parsing.
const FirstMarker = "1."

// laterMarkers separates draft 1 from 2 and draft 2 from 3.
var laterMarkers = regexp.MustCompile(`2\.|3\.`)

// HasFirstMarker reports whether buf contains the first marker.
func HasFirstMarker(buf string) bool {
	return strings.Contains(buf, FirstMarker)
}

// Parse extracts the three drafts from buf.
//
// Content starts right after the first "1." and the single character that
// follows it (normally a space). The rest is split on the first two literal
// "2." or "3." occurrences into at most three parts, trimmed of surrounding
// whitespace; anything after the second split, later markers included, stays
// in the last draft. Drafts that have not arrived yet are empty. ok is false,
// and the result is all empty, while "1." is absent.
func Parse(buf string) (segments [Count]string, ok bool) {
	idx := strings.Index(buf, FirstMarker)
	if idx < 0 {
		return segments, false
	}
	rest := buf[idx+len(FirstMarker):]
	if rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		rest = rest[size:]
	}

	parts := laterMarkers.Split(rest, Count)
	for i := 0; i < len(parts); i++ {
		segments[i] = strings.TrimSpace(parts[i])
	}
	return segments, true
}

// Filled returns how many leading drafts are non-empty.
func Filled(segments [Count]string) int {
	n := 0
	for _, s := range segments {
		if s == "" {
			break
		}
		n++
	}
	return n
}
