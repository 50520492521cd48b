package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/tbourn/latency-workshop-app/internal/llm"
	"github.com/tbourn/latency-workshop-app/internal/repo"
)

type failingGenerator struct{ partial string }

func (failingGenerator) Name() string { return "failing" }

func (g failingGenerator) Stream(_ context.Context, _ string, w io.Writer) error {
	if g.partial != "" {
		_, _ = io.WriteString(w, g.partial)
	}
	return errors.New("upstream exploded")
}

func TestGenerationService_Prompt(t *testing.T) {
	s := &GenerationService{MaxPromptRunes: 10}

	if p, err := s.Prompt(GenerationInput{Prompt: "  hi  ", Topic: "ignored"}); err != nil || p != "hi" {
		t.Fatalf("prompt = %q, %v", p, err)
	}
	if _, err := s.Prompt(GenerationInput{Prompt: "   "}); !errors.Is(err, ErrEmptyPrompt) {
		t.Fatalf("expected ErrEmptyPrompt, got %v", err)
	}
	if _, err := s.Prompt(GenerationInput{Prompt: strings.Repeat("é", 11)}); !errors.Is(err, ErrPromptTooLong) {
		t.Fatalf("expected ErrPromptTooLong, got %v", err)
	}

	s.MaxPromptRunes = 0
	p, err := s.Prompt(GenerationInput{Topic: "gophers", Audience: "Engineer"})
	if err != nil {
		t.Fatalf("Prompt from topic: %v", err)
	}
	if p != llm.BuildPrompt("gophers", "Engineer") {
		t.Fatalf("unexpected built prompt: %q", p)
	}
}

func TestGenerationService_Generate_StreamsAndPersists(t *testing.T) {
	db := newTestDB(t)
	text := "1. alpha #a\n\n2. beta #b\n\n3. gamma #c"
	s := &GenerationService{DB: db, Generator: &llm.Canned{Text: text, ChunkSize: 4}}

	var out bytes.Buffer
	g, err := s.Generate(context.Background(), "gen-1", "p", " topic ", &out)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.String() != text {
		t.Fatalf("client saw %q", out.String())
	}
	if g.RawText != text || g.Topic != "topic" || g.Model != "canned" {
		t.Fatalf("unexpected generation: %+v", g)
	}

	stored, err := s.Get(context.Background(), "gen-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := []string{"alpha #a", "beta #b", "gamma #c"}
	if len(stored.Drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %+v", stored.Drafts)
	}
	for i, d := range stored.Drafts {
		if d.Position != i+1 || d.Text != want[i] {
			t.Fatalf("draft %d = %+v, want %q", i, d, want[i])
		}
	}
}

func TestGenerationService_Generate_NoMarkerNoDrafts(t *testing.T) {
	db := newTestDB(t)
	s := &GenerationService{DB: db, Generator: &llm.Canned{Text: "I cannot help with that."}}

	g, err := s.Generate(context.Background(), "gen-2", "p", "", io.Discard)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(g.Drafts) != 0 {
		t.Fatalf("expected no drafts, got %+v", g.Drafts)
	}
	if _, err := s.Get(context.Background(), "gen-2"); err != nil {
		t.Fatalf("generation should still be stored: %v", err)
	}
}

func TestGenerationService_Generate_FailureNotPersisted(t *testing.T) {
	db := newTestDB(t)
	s := &GenerationService{DB: db, Generator: failingGenerator{partial: "1. half"}}

	var out bytes.Buffer
	if _, err := s.Generate(context.Background(), "gen-3", "p", "", &out); err == nil {
		t.Fatal("expected error")
	}
	if out.String() != "1. half" {
		t.Fatalf("partial output should reach the client, got %q", out.String())
	}
	if n, _ := repo.CountGenerations(context.Background(), db); n != 0 {
		t.Fatalf("expected nothing persisted, got %d", n)
	}
}

func TestGenerationService_ListPage_And_Get(t *testing.T) {
	db := newTestDB(t)
	s := &GenerationService{DB: db, Generator: &llm.Canned{Text: "1. a 2. b 3. c"}}
	ctx := context.Background()

	items, total, err := s.ListPage(ctx, 0, 0)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty list = %v, %d, %v", items, total, err)
	}

	for _, id := range []string{"g1", "g2", "g3"} {
		if _, err := s.Generate(ctx, id, "p", "", io.Discard); err != nil {
			t.Fatalf("Generate %s: %v", id, err)
		}
	}
	items, total, err = s.ListPage(ctx, 1, 2)
	if err != nil || total != 3 || len(items) != 2 {
		t.Fatalf("page 1 = %d items, total %d, err %v", len(items), total, err)
	}
	count, latest, err := s.Stats(ctx)
	if err != nil || count != 3 || latest == nil {
		t.Fatalf("Stats = %d, %v, %v", count, latest, err)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrGenerationNotFound) {
		t.Fatalf("expected ErrGenerationNotFound, got %v", err)
	}
}

func TestGenerationService_ReviseDraft(t *testing.T) {
	db := newTestDB(t)
	s := &GenerationService{DB: db, Generator: &llm.Canned{Text: "1. one 2. two 3. three"}, MaxPromptRunes: 20}
	ctx := context.Background()

	g, err := s.Generate(ctx, "g1", "p", "", io.Discard)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	draftID := g.Drafts[1].ID

	d, err := s.ReviseDraft(ctx, draftID, "  my better two ")
	if err != nil {
		t.Fatalf("ReviseDraft: %v", err)
	}
	if d.Text != "two" || d.RevisedText == nil || *d.RevisedText != "my better two" || d.Effective() != "my better two" {
		t.Fatalf("unexpected revised draft: %+v", d)
	}

	if _, err := s.ReviseDraft(ctx, draftID, "   "); !errors.Is(err, ErrEmptyRevision) {
		t.Fatalf("expected ErrEmptyRevision, got %v", err)
	}
	if _, err := s.ReviseDraft(ctx, draftID, strings.Repeat("x", 21)); !errors.Is(err, ErrPromptTooLong) {
		t.Fatalf("expected ErrPromptTooLong, got %v", err)
	}
	if _, err := s.ReviseDraft(ctx, "missing", "x"); !errors.Is(err, ErrDraftNotFound) {
		t.Fatalf("expected ErrDraftNotFound, got %v", err)
	}
}
