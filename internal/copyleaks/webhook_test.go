package copyleaks

import (
	"encoding/json"
	"testing"
)

func TestStatusPayload_SelectedResult_LowestMatchedWordsWins(t *testing.T) {
	var p StatusPayload
	body := `{"scannedDocument":{"scanId":"s1"},"results":{"internet":[{"id":"x","matchedWords":5},{"id":"y","matchedWords":2}]}}`
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	res, ok := p.SelectedResult()
	if !ok || res.ID != "y" || res.MatchedWords != 2 {
		t.Fatalf("SelectedResult = %+v, %v; want y", res, ok)
	}
	// Selection must not reorder the payload.
	if p.Results.Internet[0].ID != "x" {
		t.Fatalf("payload mutated: %+v", p.Results.Internet)
	}
}

func TestStatusPayload_SelectedResult_TiesKeepOrder(t *testing.T) {
	p := StatusPayload{Results: &ScanResults{Internet: []InternetResult{{ID: "a", MatchedWords: 3}, {ID: "b", MatchedWords: 3}}}}
	if res, _ := p.SelectedResult(); res.ID != "a" {
		t.Fatalf("tie should keep provider order, got %q", res.ID)
	}
}

func TestStatusPayload_SelectedResult_Missing(t *testing.T) {
	for _, body := range []string{`{"scannedDocument":{"scanId":"s"}}`, `{"results":{"internet":[]}}`} {
		var p StatusPayload
		_ = json.Unmarshal([]byte(body), &p)
		if _, ok := p.SelectedResult(); ok {
			t.Fatalf("expected no result for %s", body)
		}
	}
}

func TestExportPayload_Decode(t *testing.T) {
	body := `{"text":{"comparison":{"identical":{"source":{"chars":{"starts":[0,10],"lengths":[4,3]},"words":{"starts":[0],"lengths":[1]}}}}}}`
	var p ExportPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Text.Comparison == nil {
		t.Fatalf("comparison missing")
	}
	ch := p.Text.Comparison.Identical.Source.Chars
	if len(ch.Starts) != 2 || ch.Starts[1] != 10 || ch.Lengths[1] != 3 {
		t.Fatalf("unexpected ranges: %+v", ch)
	}
}
