package reports

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

const MaxDescriptionLength = 2000

// Service owns the moderation report ledger.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create files a report against another user. Reports are append-only and
// start pending; filing one never hides content, blocking does that.
func (s *Service) Create(ctx context.Context, reporterID, reportedID, reason, description string) (*models.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.ValidationRequired("reason")
	}
	if len(description) > MaxDescriptionLength {
		return nil, errors.ValidationTooLong("description", MaxDescriptionLength, len(description))
	}
	if reporterID == reportedID {
		return nil, errors.BadRequest("cannot report yourself")
	}

	var reported models.User
	if err := s.db.WithContext(ctx).First(&reported, "id = ?", reportedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}

	report := &models.Report{
		ReporterID:  reporterID,
		ReportedID:  reportedID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		Status:      models.ReportStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, err
	}
	return report, nil
}

// SetStatus moves a report to any valid status and records the reviewer.
// Transitions are unrestricted, a dismissed report can be reopened.
func (s *Service) SetStatus(ctx context.Context, reviewerID, reportID string, status models.ReportStatus) (*models.Report, error) {
	if !status.Valid() {
		return nil, errors.ValidationError("status", "must be pending, reviewed, resolved or dismissed")
	}

	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", reportID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("report")
		}
		return nil, err
	}

	updates := map[string]interface{}{
		"status":         status,
		"reviewed_by_id": reviewerID,
	}
	if err := s.db.WithContext(ctx).Model(&report).Updates(updates).Error; err != nil {
		return nil, err
	}
	report.Status = status
	report.ReviewedByID = &reviewerID
	return &report, nil
}

// ListByStatus returns reports in a status, oldest first so the queue is
// worked in filing order.
func (s *Service) ListByStatus(ctx context.Context, status models.ReportStatus, limit, offset int) ([]models.Report, error) {
	if !status.Valid() {
		return nil, errors.ValidationError("status", "must be pending, reviewed, resolved or dismissed")
	}

	var reports []models.Report
	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Preload("Reported").
		Where("status = ?", status).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ListAgainst returns every report filed against a user, newest first.
func (s *Service) ListAgainst(ctx context.Context, reportedID string) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).
		Preload("Reporter").
		Where("reported_id = ?", reportedID).
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}
