package reconcile

import "github.com/tbourn/latency-workshop-app/internal/domain"

// View is what a watcher shows for one scan at one point in time.
//
// Loading stays true until the record is terminal. Percent is set as soon
// as the status webhook has stored a matched word count; Spans and HTML
// once the export webhook has stored offsets.
type View struct {
	ScanID       string   `json:"scan_id"`
	Status       string   `json:"status"`
	Text         string   `json:"text"`
	MatchedWords *int     `json:"matched_words,omitempty"`
	Percent      *float64 `json:"percent,omitempty"`
	Loading      bool     `json:"loading"`
	Terminal     bool     `json:"terminal"`
	Spans        []Span   `json:"spans,omitempty"`
	HTML         string   `json:"html,omitempty"`
}

// Build derives the view of rec.
func Build(rec *domain.ScanRecord) View {
	v := View{
		ScanID:       rec.ScanID,
		Status:       rec.Status,
		Text:         rec.Text,
		MatchedWords: rec.MatchedWords,
	}
	if rec.MatchedWords != nil {
		p := Score(*rec.MatchedWords, rec.Text)
		v.Percent = &p
	}
	if rec.Results != nil {
		chars := rec.Results.Identical.Source.Chars
		v.Spans = Highlight(rec.Text, chars.Starts, chars.Lengths)
		v.HTML = RenderHTML(v.Spans)
	}
	v.Terminal = terminal(rec)
	v.Loading = !v.Terminal
	return v
}

// terminal reports whether no further webhook will change rec: offsets are
// in, the scan completed without matches (no export is requested) or the
// provider gave up.
func terminal(rec *domain.ScanRecord) bool {
	switch {
	case rec.Results != nil:
		return true
	case rec.Status == domain.ScanError:
		return true
	case rec.Status == domain.ScanCompleted && rec.MatchedWords != nil && *rec.MatchedWords == 0:
		return true
	}
	return false
}
