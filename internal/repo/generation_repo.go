// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for generations
// and their drafts.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
//
// Error semantics:
//   - When a record is not found, functions return ErrNotFound.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/latency-workshop-app/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

func orderedDrafts(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }

// CreateGeneration inserts the generation together with its drafts. Callers
// wanting all-or-nothing semantics pass a transaction handle.
func CreateGeneration(ctx context.Context, db *gorm.DB, g *domain.Generation) error {
	return db.WithContext(ctx).Create(g).Error
}

// GetGeneration fetches a generation and its drafts ordered by position.
func GetGeneration(ctx context.Context, db *gorm.DB, id string) (*domain.Generation, error) {
	var g domain.Generation
	err := db.WithContext(ctx).
		Preload("Drafts", orderedDrafts).
		Where("id = ?", id).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CountGenerations returns the total number of generations.
func CountGenerations(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.Generation{}).Count(&total).Error
	return total, err
}

// ListGenerationsPage returns a page of generations, most recent first,
// each with its drafts.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListGenerationsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Generation, error) {
	var out []domain.Generation
	err := db.WithContext(ctx).
		Preload("Drafts", orderedDrafts).
		Order("created_at desc, id desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetDraft fetches a single draft by id.
func GetDraft(ctx context.Context, db *gorm.DB, id string) (*domain.Draft, error) {
	var d domain.Draft
	if err := db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDraftRevision stores a user edit for the draft. The original text is
// never touched. Returns ErrNotFound if the draft does not exist.
func UpdateDraftRevision(ctx context.Context, db *gorm.DB, id, revised string) error {
	res := db.WithContext(ctx).
		Model(&domain.Draft{}).
		Where("id = ?", id).
		Update("revised_text", revised)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchGeneration bumps updated_at so list ETags change after a draft edit.
func TouchGeneration(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).
		Model(&domain.Generation{}).
		Where("id = ?", id).
		Update("updated_at", time.Now().UTC()).Error
}
