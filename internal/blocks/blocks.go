// Package blocks stores directed block edges between users and computes the
// symmetric "effective block set" used to hide community content.
package blocks

import (
	"context"

	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Registry manages block edges.
type Registry struct {
	db *gorm.DB
}

// NewRegistry creates a block registry on the given database connection.
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{db: db}
}

// Block inserts a directed edge blocker -> blocked.
func (r *Registry) Block(ctx context.Context, blockerID, blockedID, reason string) error {
	if blockerID == blockedID {
		return errors.SelfBlock()
	}

	var target models.User
	if err := r.db.WithContext(ctx).First(&target, "id = ?", blockedID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("user")
		}
		return err
	}

	var existing models.UserBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		First(&existing).Error
	if err == nil {
		return errors.AlreadyBlocked()
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	edge := models.UserBlock{
		BlockerID: blockerID,
		BlockedID: blockedID,
		Reason:    reason,
	}
	if err := r.db.WithContext(ctx).Create(&edge).Error; err != nil {
		return err
	}

	logger.Log.Info("user blocked",
		zap.String("blocker_id", blockerID),
		zap.String("blocked_id", blockedID),
	)
	return nil
}

// Unblock removes the edge blocker -> blocked.
func (r *Registry) Unblock(ctx context.Context, blockerID, blockedID string) error {
	res := r.db.WithContext(ctx).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.UserBlock{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("block")
	}
	return nil
}

// EffectiveBlockSet returns the union of users this user has blocked and
// users who have blocked this user. The union is symmetric on purpose: a
// viewer sees neither side of a block. Computed fresh on every call so block
// changes take effect on the next query.
func (r *Registry) EffectiveBlockSet(ctx context.Context, userID string) (map[string]struct{}, error) {
	var edges []models.UserBlock
	err := r.db.WithContext(ctx).
		Where("blocker_id = ? OR blocked_id = ?", userID, userID).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		if e.BlockerID == userID {
			set[e.BlockedID] = struct{}{}
		} else {
			set[e.BlockerID] = struct{}{}
		}
	}
	return set, nil
}

// HiddenAuthorIDs returns the effective block set as a slice for use in SQL
// NOT IN clauses. Empty when viewerID is empty (no viewer, no filtering).
func (r *Registry) HiddenAuthorIDs(ctx context.Context, viewerID string) ([]string, error) {
	if viewerID == "" {
		return nil, nil
	}
	set, err := r.EffectiveBlockSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids, nil
}

// IsBlocked reports whether the other user is in this user's effective block
// set.
func (r *Registry) IsBlocked(ctx context.Context, userID, otherID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserBlock{}).
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)",
			userID, otherID, otherID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListBlocked returns the users this user has blocked (outgoing edges only),
// newest first.
func (r *Registry) ListBlocked(ctx context.Context, userID string) ([]models.UserBlock, error) {
	var edges []models.UserBlock
	err := r.db.WithContext(ctx).
		Preload("Blocked").
		Where("blocker_id = ?", userID).
		Order("created_at DESC").
		Find(&edges).Error
	return edges, err
}
