// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the shared-store operations for
// plagiarism scans.
//
// The two webhook receivers write disjoint columns of the same row:
//
//   - CreateScanPlaceholder touches text only once the row exists.
//   - UpsertScanStatus touches status and matched_words only.
//   - SetScanResults touches results only, and never creates a row.
//
// Neither reads before writing, so deliveries in any order and any number
// of redeliveries converge on the same row.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/latency-workshop-app/internal/domain"
)

// CreateScanPlaceholder records a freshly requested scan with status
// "pending" and the submitted text. If the status webhook already created
// the row, only the text is filled in.
func CreateScanPlaceholder(ctx context.Context, db *gorm.DB, scanID, text string) error {
	now := time.Now().UTC()
	rec := &domain.ScanRecord{
		ScanID:    scanID,
		Text:      text,
		Status:    domain.ScanPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scan_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"text"}),
		}).
		Create(rec).Error
}

// UpsertScanStatus writes the provider status and, when non-nil, the matched
// word count for scanID. A missing row is created; an existing row keeps its
// text and results.
func UpsertScanStatus(ctx context.Context, db *gorm.DB, scanID, status string, matchedWords *int) error {
	now := time.Now().UTC()
	rec := &domain.ScanRecord{
		ScanID:       scanID,
		Status:       status,
		MatchedWords: matchedWords,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	cols := []string{"status", "updated_at"}
	if matchedWords != nil {
		cols = append(cols, "matched_words")
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "scan_id"}},
			DoUpdates: clause.AssignmentColumns(cols),
		}).
		Create(rec).Error
}

// SetScanResults stores the comparison offsets for an existing scan. It
// reports false, with no error, when no row exists for scanID.
func SetScanResults(ctx context.Context, db *gorm.DB, scanID string, cmp *domain.Comparison) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.ScanRecord{}).
		Where("scan_id = ?", scanID).
		Updates(map[string]any{
			"results":    cmp,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GetScan fetches one scan by id, or ErrNotFound.
func GetScan(ctx context.Context, db *gorm.DB, scanID string) (*domain.ScanRecord, error) {
	var rec domain.ScanRecord
	if err := db.WithContext(ctx).Where("scan_id = ?", scanID).First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
