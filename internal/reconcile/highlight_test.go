package reconcile

import (
	"math"
	"reflect"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name    string
		matched int
		text    string
		want    float64
	}{
		{"half", 2, "one two three four", 50},
		{"none", 0, "one two", 0},
		{"empty text", 3, "   ", 0},
		{"extra whitespace", 1, "  a\n b\tc  d ", 25},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Score(c.matched, c.text); math.Abs(got-c.want) > 1e-9 {
				t.Fatalf("Score = %v, want %v", got, c.want)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		starts  []int
		lengths []int
		want    []Span
	}{
		{
			name:    "no offsets",
			text:    "plain",
			want:    []Span{{Text: "plain"}},
		},
		{
			name:    "middle match",
			text:    "hello brave world",
			starts:  []int{6},
			lengths: []int{5},
			want:    []Span{{Text: "hello "}, {Text: "brave", Match: true}, {Text: " world"}},
		},
		{
			name:    "match at both ends",
			text:    "abcdef",
			starts:  []int{0, 4},
			lengths: []int{2, 2},
			want:    []Span{{Text: "ab", Match: true}, {Text: "cd"}, {Text: "ef", Match: true}},
		},
		{
			name:    "rune offsets",
			text:    "héllo wörld",
			starts:  []int{6},
			lengths: []int{5},
			want:    []Span{{Text: "héllo "}, {Text: "wörld", Match: true}},
		},
		{
			name:    "clamped past end",
			text:    "abc",
			starts:  []int{1},
			lengths: []int{10},
			want:    []Span{{Text: "a"}, {Text: "bc", Match: true}},
		},
		{
			name:    "start past end skipped",
			text:    "abc",
			starts:  []int{5},
			lengths: []int{1},
			want:    []Span{{Text: "abc"}},
		},
		{
			name:    "overlap trimmed",
			text:    "abcdef",
			starts:  []int{0, 2},
			lengths: []int{4, 3},
			want:    []Span{{Text: "abcd", Match: true}, {Text: "e", Match: true}, {Text: "f"}},
		},
		{
			name:    "zero length skipped",
			text:    "abc",
			starts:  []int{1},
			lengths: []int{0},
			want:    []Span{{Text: "abc"}},
		},
		{
			name:    "mismatched arrays use shorter",
			text:    "abcd",
			starts:  []int{0, 2},
			lengths: []int{1},
			want:    []Span{{Text: "a", Match: true}, {Text: "bcd"}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Highlight(c.text, c.starts, c.lengths)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("Highlight = %+v, want %+v", got, c.want)
			}
		})
	}
}

func TestRenderHTML_EscapesAndMarks(t *testing.T) {
	spans := Highlight("a <b> & c", []int{2}, []int{3})
	got := RenderHTML(spans)
	want := `a <mark style="background:#FF9890">&lt;b&gt;</mark> &amp; c`
	if got != want {
		t.Fatalf("RenderHTML = %q, want %q", got, want)
	}
}

func TestRender_NilFuncsPassThrough(t *testing.T) {
	spans := []Span{{Text: "x"}, {Text: "y", Match: true}}
	if got := Render(spans, nil, nil); got != "xy" {
		t.Fatalf("Render = %q", got)
	}
	got := Render(spans, nil, func(s string) string { return "[" + s + "]" })
	if got != "x[y]" {
		t.Fatalf("Render = %q", got)
	}
}
