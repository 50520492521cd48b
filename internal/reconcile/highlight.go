package reconcile

import (
	"html"
	"strings"
)

// Span is a run of text that is either matched or not.
type Span struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Score is the matched-word percentage of text. Words are whitespace
// separated; empty text scores 0.
func Score(matchedWords int, text string) float64 {
	n := len(strings.Fields(text))
	if n == 0 {
		return 0
	}
	return float64(matchedWords) / float64(n) * 100
}

// Highlight splits text at the given match boundaries. starts and lengths
// are parallel and in rune offsets; starts are expected non-decreasing.
// A single cursor walks the offsets once. Spans reaching past the end are
// clamped, spans overlapping an earlier one start where it ended, and what
// is left empty is skipped.
func Highlight(text string, starts, lengths []int) []Span {
	runes := []rune(text)
	n := len(starts)
	if len(lengths) < n {
		n = len(lengths)
	}

	var out []Span
	pos := 0
	for k := 0; k < n; k++ {
		s, e := starts[k], starts[k]+lengths[k]
		if s >= len(runes) {
			break
		}
		if s < pos {
			s = pos
		}
		if e > len(runes) {
			e = len(runes)
		}
		if e <= s {
			continue
		}
		if s > pos {
			out = append(out, Span{Text: string(runes[pos:s])})
		}
		out = append(out, Span{Text: string(runes[s:e]), Match: true})
		pos = e
	}
	if pos < len(runes) {
		out = append(out, Span{Text: string(runes[pos:])})
	}
	return out
}

// Render joins spans, passing matched text through mark and the rest
// through plain. A nil func leaves the text as is.
func Render(spans []Span, plain, mark func(string) string) string {
	var b strings.Builder
	for _, s := range spans {
		f := plain
		if s.Match {
			f = mark
		}
		if f == nil {
			b.WriteString(s.Text)
			continue
		}
		b.WriteString(f(s.Text))
	}
	return b.String()
}

const markOpen = `<mark style="background:#FF9890">`

// RenderHTML renders spans as escaped HTML with matches in <mark> tags.
func RenderHTML(spans []Span) string {
	return Render(spans, html.EscapeString, func(s string) string {
		return markOpen + html.EscapeString(s) + "</mark>"
	})
}
