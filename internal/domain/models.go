// Package domain defines the persistence models for generations, drafts and
// plagiarism scans. These types are mapped with GORM and form the shared
// store that the HTTP API, the webhook receivers and the reconciler work on.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Generation is one streamed completion request. RawText holds the full
// accumulated stream so the drafts can be re-derived if the parser changes.
//
// Fields:
//   - ID: UUID primary key (char(36)), also sent to the client up front.
//   - Prompt: the exact prompt sent to the completion provider.
//   - Topic: the user topic the prompt was built from (may be empty).
//   - RawText: the whole stream buffer as received.
//   - Model: provider model name, or "canned" for the offline generator.
//   - Drafts: the three parsed segments, ordered by Position.
type Generation struct {
	ID        string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Prompt    string         `json:"prompt"     gorm:"type:text;not null"`
	Topic     string         `json:"topic"      gorm:"type:varchar(512);not null;default:''"`
	RawText   string         `json:"raw_text"   gorm:"type:text;not null;default:''"`
	Model     string         `json:"model"      gorm:"type:varchar(64);not null;default:''"`
	CreatedAt time.Time      `json:"created_at" gorm:"index:idx_generations_created"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`

	Drafts []Draft `json:"drafts,omitempty" gorm:"foreignKey:GenerationID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Generation.
func (Generation) TableName() string { return "generations" }

// Draft is one of the three segments extracted from a generation. Text is
// immutable once written; user edits land in RevisedText.
type Draft struct {
	ID           string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	GenerationID string    `json:"generation_id"          gorm:"type:char(36);not null;uniqueIndex:ux_draft_generation_position,priority:1"`
	Position     int       `json:"position"               gorm:"not null;uniqueIndex:ux_draft_generation_position,priority:2;check:position BETWEEN 1 AND 3"`
	Text         string    `json:"text"                   gorm:"type:text;not null"`
	RevisedText  *string   `json:"revised_text,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName returns the database table name for Draft.
func (Draft) TableName() string { return "drafts" }

// Effective returns the revised text when present, otherwise the original.
func (d Draft) Effective() string {
	if d.RevisedText != nil {
		return *d.RevisedText
	}
	return d.Text
}
