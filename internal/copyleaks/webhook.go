package copyleaks

import (
	"sort"

	"github.com/tbourn/latency-workshop-app/internal/domain"
)

// ScannedDocument identifies the scan a status callback is about.
type ScannedDocument struct {
	ScanID     string `json:"scanId"`
	TotalWords int    `json:"totalWords,omitempty"`
	Credits    int    `json:"credits,omitempty"`
}

// InternetResult is one internet source that matched the scanned text.
type InternetResult struct {
	ID           string `json:"id"`
	Title        string `json:"title,omitempty"`
	URL          string `json:"url,omitempty"`
	MatchedWords int    `json:"matchedWords"`
}

// ScanResults groups the matches of a completed scan.
type ScanResults struct {
	Internet []InternetResult `json:"internet"`
}

// StatusPayload is the body of the status webhook.
type StatusPayload struct {
	ScannedDocument ScannedDocument `json:"scannedDocument"`
	Results         *ScanResults    `json:"results,omitempty"`
}

// SelectedResult picks the internet result with the fewest matched words.
// Ties keep provider order. ok is false when there are no internet results.
func (p StatusPayload) SelectedResult() (res InternetResult, ok bool) {
	if p.Results == nil || len(p.Results.Internet) == 0 {
		return InternetResult{}, false
	}
	sorted := append([]InternetResult(nil), p.Results.Internet...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchedWords < sorted[j].MatchedWords
	})
	return sorted[0], true
}

// ExportText wraps the comparison offsets of an exported result.
type ExportText struct {
	Comparison *domain.Comparison `json:"comparison"`
}

// ExportPayload is the body of the export webhook.
type ExportPayload struct {
	Text ExportText `json:"text"`
}
