package domain

import (
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:domain_models?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Generation{}).TableName():  "generations",
		(Draft{}).TableName():       "drafts",
		(ScanRecord{}).TableName():  "scans",
		(Idempotency{}).TableName(): "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestDraft_Effective(t *testing.T) {
	d := Draft{Text: "orig"}
	if d.Effective() != "orig" {
		t.Fatalf("Effective without revision = %q", d.Effective())
	}
	rev := "edited"
	d.RevisedText = &rev
	if d.Effective() != "edited" {
		t.Fatalf("Effective with revision = %q", d.Effective())
	}
}

func TestMigrations_Indexes_Constraints_AndCascades(t *testing.T) {
	db := newDomainDB(t)

	if err := db.AutoMigrate(&Generation{}, &Draft{}, &ScanRecord{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&Generation{}, &Draft{}, &ScanRecord{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&Generation{}, "idx_generations_created") {
		t.Fatalf("expected index idx_generations_created on generations")
	}
	if !m.HasIndex(&Draft{}, "ux_draft_generation_position") {
		t.Fatalf("expected unique index ux_draft_generation_position on drafts")
	}

	now := time.Now().UTC()
	g := &Generation{ID: "g1", Prompt: "p", CreatedAt: now, UpdatedAt: now}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("insert generation: %v", err)
	}
	for i := 1; i <= 3; i++ {
		d := &Draft{ID: "d" + string(rune('0'+i)), GenerationID: "g1", Position: i, Text: "t"}
		if err := db.Create(d).Error; err != nil {
			t.Fatalf("insert draft %d: %v", i, err)
		}
	}

	// Position outside 1..3 is rejected by the CHECK constraint.
	if err := db.Create(&Draft{ID: "d4", GenerationID: "g1", Position: 4, Text: "t"}).Error; err == nil {
		t.Fatalf("expected check violation for position 4")
	}
	// Same (generation, position) twice is rejected.
	if err := db.Create(&Draft{ID: "d5", GenerationID: "g1", Position: 2, Text: "t"}).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate position")
	}

	// CASCADE: deleting the generation removes its drafts.
	if err := db.Unscoped().Delete(&Generation{}, "id = ?", "g1").Error; err != nil {
		t.Fatalf("delete generation: %v", err)
	}
	var cnt int64
	if err := db.Model(&Draft{}).Where("generation_id = ?", "g1").Count(&cnt).Error; err != nil {
		t.Fatalf("count drafts: %v", err)
	}
	if cnt != 0 {
		t.Fatalf("expected drafts to cascade-delete, got count=%d", cnt)
	}
}
