package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportStatus represents the review state of a report.
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewed  ReportStatus = "reviewed"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// Valid reports whether s is one of the known report statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved, ReportStatusDismissed:
		return true
	}
	return false
}

// Report is an append-only moderation record. It is independent of the block
// registry: reporting someone does not hide their content.
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	ReportedID string `gorm:"not null;index" json:"reported_id"`
	Reported   User   `gorm:"foreignKey:ReportedID" json:"reported,omitempty"`

	Reason      string       `gorm:"not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	Status      ReportStatus `gorm:"not null;default:pending;index" json:"status"`

	ReviewedByID *string `gorm:"index" json:"reviewed_by_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.Status == "" {
		r.Status = ReportStatusPending
	}
	return nil
}
