package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/internal/domain"
)

func seedGeneration(t *testing.T, db *gorm.DB, id string, at time.Time) *domain.Generation {
	t.Helper()
	g := &domain.Generation{
		ID:        id,
		Prompt:    "prompt " + id,
		CreatedAt: at,
		UpdatedAt: at,
		Drafts: []domain.Draft{
			{ID: id + "-3", Position: 3, Text: "three"},
			{ID: id + "-1", Position: 1, Text: "one"},
			{ID: id + "-2", Position: 2, Text: "two"},
		},
	}
	if err := CreateGeneration(context.Background(), db, g); err != nil {
		t.Fatalf("CreateGeneration: %v", err)
	}
	return g
}

func TestCreateAndGetGeneration_DraftsOrdered(t *testing.T) {
	db := newTestDB(t, &domain.Generation{}, &domain.Draft{})
	seedGeneration(t, db, "g1", time.Now().UTC())

	got, err := GetGeneration(context.Background(), db, "g1")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if len(got.Drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(got.Drafts))
	}
	for i, d := range got.Drafts {
		if d.Position != i+1 || d.GenerationID != "g1" {
			t.Fatalf("draft %d out of order or unlinked: %+v", i, d)
		}
	}
}

func TestGetGeneration_Missing(t *testing.T) {
	db := newTestDB(t, &domain.Generation{}, &domain.Draft{})
	if _, err := GetGeneration(context.Background(), db, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListGenerationsPage_NewestFirst_AndCount(t *testing.T) {
	db := newTestDB(t, &domain.Generation{}, &domain.Draft{})
	base := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	seedGeneration(t, db, "a", base)
	seedGeneration(t, db, "b", base.Add(time.Minute))
	seedGeneration(t, db, "c", base.Add(2*time.Minute))

	total, err := CountGenerations(context.Background(), db)
	if err != nil || total != 3 {
		t.Fatalf("CountGenerations = %d, %v", total, err)
	}

	page, err := ListGenerationsPage(context.Background(), db, 0, 2)
	if err != nil {
		t.Fatalf("ListGenerationsPage: %v", err)
	}
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected first page: %+v", page)
	}
	if len(page[0].Drafts) != 3 || page[0].Drafts[0].Position != 1 {
		t.Fatalf("drafts not preloaded in order: %+v", page[0].Drafts)
	}

	page2, err := ListGenerationsPage(context.Background(), db, 2, 2)
	if err != nil || len(page2) != 1 || page2[0].ID != "a" {
		t.Fatalf("unexpected second page: %+v err=%v", page2, err)
	}
}

func TestUpdateDraftRevision_KeepsOriginal(t *testing.T) {
	db := newTestDB(t, &domain.Generation{}, &domain.Draft{})
	seedGeneration(t, db, "g2", time.Now().UTC())
	ctx := context.Background()

	if err := UpdateDraftRevision(ctx, db, "g2-2", "my edit"); err != nil {
		t.Fatalf("UpdateDraftRevision: %v", err)
	}
	d, err := GetDraft(ctx, db, "g2-2")
	if err != nil {
		t.Fatalf("GetDraft: %v", err)
	}
	if d.Text != "two" || d.RevisedText == nil || *d.RevisedText != "my edit" {
		t.Fatalf("unexpected draft after revision: %+v", d)
	}

	if err := UpdateDraftRevision(ctx, db, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing draft, got %v", err)
	}
}

func TestTouchGeneration_BumpsUpdatedAt(t *testing.T) {
	db := newTestDB(t, &domain.Generation{}, &domain.Draft{})
	old := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	seedGeneration(t, db, "g3", old)

	if err := TouchGeneration(context.Background(), db, "g3"); err != nil {
		t.Fatalf("TouchGeneration: %v", err)
	}
	got, err := GetGeneration(context.Background(), db, "g3")
	if err != nil {
		t.Fatalf("GetGeneration: %v", err)
	}
	if !got.UpdatedAt.After(old) {
		t.Fatalf("updated_at not bumped: %v", got.UpdatedAt)
	}
}
