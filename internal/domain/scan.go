package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Scan statuses. Completed, Error, CreditsChecked and Indexed are the values
// the provider substitutes into the status webhook URL.
const (
	ScanPending        = "pending"
	ScanCompleted      = "completed"
	ScanError          = "error"
	ScanCreditsChecked = "creditsChecked"
	ScanIndexed        = "indexed"
)

// ScanRecord is the shared-store row for one plagiarism scan, keyed by the
// client-generated scan id. The status webhook writes Status and
// MatchedWords, the export webhook writes Results; the two never touch each
// other's columns.
type ScanRecord struct {
	ScanID       string      `json:"scan_id"                 gorm:"column:scan_id;type:char(36);primaryKey"`
	Text         string      `json:"text"                    gorm:"type:text;not null;default:''"`
	Status       string      `json:"status"                  gorm:"type:varchar(32);not null;default:'pending'"`
	MatchedWords *int        `json:"matched_words,omitempty"`
	Results      *Comparison `json:"results,omitempty"       gorm:"type:text"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName returns the database table name for ScanRecord.
func (ScanRecord) TableName() string { return "scans" }

// Ranges is a pair of parallel offset arrays: span i starts at Starts[i]
// and covers Lengths[i] units.
type Ranges struct {
	Starts  []int `json:"starts"`
	Lengths []int `json:"lengths"`
}

// Side holds the character and word ranges for one side of a comparison.
type Side struct {
	Chars Ranges `json:"chars"`
	Words Ranges `json:"words"`
}

// MatchGroup pairs the ranges in the submitted text (Source) with the
// ranges in the matched document (Suspected).
type MatchGroup struct {
	Source    Side `json:"source"`
	Suspected Side `json:"suspected"`
}

// Comparison is the offset payload delivered by the export webhook.
// It is stored as a JSON text column.
type Comparison struct {
	Identical      MatchGroup `json:"identical"`
	MinorChanges   MatchGroup `json:"minorChanges"`
	RelatedMeaning MatchGroup `json:"relatedMeaning"`
}

// Value implements driver.Valuer.
func (c Comparison) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (c *Comparison) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Comparison{}
		return nil
	case []byte:
		return json.Unmarshal(v, c)
	case string:
		return json.Unmarshal([]byte(v), c)
	default:
		return fmt.Errorf("comparison: unsupported column type %T", src)
	}
}

// ErrRangeMismatch is returned by Validate when parallel arrays differ in length.
var ErrRangeMismatch = errors.New("ranges: starts and lengths differ in length")

// Validate checks that the arrays are parallel.
func (r Ranges) Validate() error {
	if len(r.Starts) != len(r.Lengths) {
		return ErrRangeMismatch
	}
	return nil
}
