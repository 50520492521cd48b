package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/tbourn/latency-workshop-app/internal/domain"
	"github.com/tbourn/latency-workshop-app/internal/reconcile"
	"github.com/tbourn/latency-workshop-app/internal/segment"
	"github.com/tbourn/latency-workshop-app/internal/stream"
)

// Values of --color.
const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// markColor is the salmon background of matched passages, as on the web page.
var markColor = lipgloss.Color("#FF9890")

// theme is how one output stream is styled. The zero value is plain text
// printed once, which is what pipes and files get.
type theme struct {
	color bool // styles reach the output
	live  bool // the output is a terminal, so frames can be redrawn

	bold lipgloss.Style
	dim  lipgloss.Style
	mark lipgloss.Style
}

// newTheme builds the styles for w. In auto mode colors follow the color
// profile termenv detects for w (NO_COLOR and CLICOLOR_FORCE included) and
// redraws need a terminal. always forces colors; never turns both off.
func newTheme(w io.Writer, mode string) theme {
	r := lipgloss.NewRenderer(w)
	live := isTerminal(w)
	switch mode {
	case colorAlways:
		r.SetColorProfile(termenv.TrueColor)
	case colorNever:
		r.SetColorProfile(termenv.Ascii)
		live = false
	}
	return theme{
		color: r.ColorProfile() != termenv.Ascii,
		live:  live,
		bold:  r.NewStyle().Bold(true),
		dim:   r.NewStyle().Faint(true),
		mark:  r.NewStyle().Background(markColor).Foreground(lipgloss.Color("#000000")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

// paint applies st line by line, so multi-line text keeps its shape.
func (t theme) paint(st lipgloss.Style, s string) string {
	if !t.color || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = st.Render(l)
		}
	}
	return strings.Join(lines, "\n")
}

// draftBoard shows the three drafts while they stream. Live boards move the
// cursor back over the previous frame and redraw it; other boards print the
// final frame only. Lines wider than the terminal break the redraw.
type draftBoard struct {
	out   *termenv.Output
	th    theme
	lines int
}

func newDraftBoard(w io.Writer, th theme) *draftBoard {
	return &draftBoard{out: termenv.NewOutput(w), th: th}
}

// Draw is a stream update callback.
func (b *draftBoard) Draw(u stream.Update) {
	if !b.th.live && !u.Final {
		return
	}
	frame := formatDrafts(u.Segments, b.th)
	if b.th.live && b.lines > 0 {
		b.out.CursorPrevLine(b.lines)
		fmt.Fprintf(b.out, termenv.CSI+termenv.EraseDisplaySeq, 0)
	}
	io.WriteString(b.out, frame)
	b.lines = strings.Count(frame, "\n")
}

func formatDrafts(segs [segment.Count]string, th theme) string {
	var sb strings.Builder
	for i, s := range segs {
		sb.WriteString(th.paint(th.bold, fmt.Sprintf("Draft %d", i+1)) + "\n")
		if s == "" {
			s = "…"
		}
		for _, line := range strings.Split(s, "\n") {
			sb.WriteString("  " + line + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// missingDrafts is the note printed when the completion did not deliver all
// drafts, or "" when it did.
func missingDrafts(segs [segment.Count]string) string {
	n := segment.Filled(segs)
	if n == segment.Count {
		return ""
	}
	return fmt.Sprintf("only %d of %d drafts arrived", n, segment.Count)
}

// summary is the one-line verdict for a view.
func summary(v reconcile.View) string {
	switch {
	case v.Status == domain.ScanError:
		return "scan failed at the provider"
	case v.Percent == nil:
		return "still scanning (" + v.Status + ")"
	case v.MatchedWords != nil:
		return fmt.Sprintf("%.1f%% matched (%d words)", *v.Percent, *v.MatchedWords)
	default:
		return fmt.Sprintf("%.1f%% matched", *v.Percent)
	}
}

// formatView renders the verdict and, when offsets are in, the text with
// the matched passages highlighted. Without colors they are bracketed.
func formatView(label string, v reconcile.View, th theme) string {
	var sb strings.Builder
	sb.WriteString(th.paint(th.bold, label) + ": " + summary(v) + "\n")

	body := v.Text
	switch {
	case len(v.Spans) > 0 && th.color:
		body = reconcile.Render(v.Spans, nil, func(s string) string { return th.paint(th.mark, s) })
	case len(v.Spans) > 0:
		body = reconcile.Render(v.Spans, nil, func(s string) string { return "[" + s + "]" })
	default:
		body = th.paint(th.dim, body)
	}
	if body != "" {
		for _, line := range strings.Split(body, "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	if !v.Terminal {
		sb.WriteString("  (watch ended before the scan finished)\n")
	}
	return sb.String()
}

// lockedWriter serializes writes from concurrent checks.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
