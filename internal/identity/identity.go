// Package identity resolves external identities (identity-provider ids and
// self-issued guest session tokens) to internal user records, including the
// guest-to-authenticated merge.
package identity

import (
	"context"
	"time"

	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service resolves and merges user identities.
type Service struct {
	db *gorm.DB
}

// NewService creates an identity service on the given database connection.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ResolveOrCreateGuest returns the user for a guest session token, creating a
// fresh guest record on first sight. Idempotent on sessionToken.
func (s *Service) ResolveOrCreateGuest(ctx context.Context, sessionToken, username string) (*models.User, error) {
	if sessionToken == "" {
		return nil, errors.BadRequest("session token is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionToken).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		SessionID: &sessionToken,
		Username:  username,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("guest user created", logger.WithUserID(user.ID))
	return &user, nil
}

// ResolveOrCreateAuthenticated returns the user for an identity-provider id,
// creating one on first sign-in. When the user already exists, the mutable
// profile fields are refreshed from the provider. Idempotent on externalID.
func (s *Service) ResolveOrCreateAuthenticated(ctx context.Context, externalID, username, avatarURL string, email *string) (*models.User, error) {
	if externalID == "" {
		return nil, errors.BadRequest("external id is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("auth_id = ?", externalID).First(&user).Error
	if err == nil {
		update := UserUpdate{
			Username:  &username,
			AvatarURL: &avatarURL,
			Email:     email,
		}
		if err := s.db.WithContext(ctx).Model(&user).Updates(update.fields()).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = models.User{
		AuthID:    &externalID,
		Username:  username,
		AvatarURL: avatarURL,
		Email:     email,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	logger.Log.Info("authenticated user created", logger.WithUserID(user.ID))
	return &user, nil
}

// MigrateGuestToAuthenticated merges a guest record into an authenticated
// identity. When no user holds externalID yet, the guest record is converted
// in place: authID set, sessionID cleared, username/avatar overwritten, and
// everything else (visited cities, current city, last seen) kept. When an
// authenticated user already exists for externalID, the visited-city sets are
// unioned, the authenticated user's current city wins unless absent, and the
// guest record is deleted. The merge runs in one transaction so a failure
// leaves no partial state.
func (s *Service) MigrateGuestToAuthenticated(ctx context.Context, guestUserID, externalID, username, avatarURL string) (*models.User, error) {
	var result *models.User

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var guest models.User
		if err := tx.First(&guest, "id = ?", guestUserID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.NotFound("guest user")
			}
			return err
		}

		var existing models.User
		err := tx.Where("auth_id = ?", externalID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			// First sign-in from this identity: convert the guest in place.
			updates := map[string]interface{}{
				"auth_id":    externalID,
				"session_id": nil,
				"username":   username,
				"avatar_url": avatarURL,
			}
			if err := tx.Model(&guest).Updates(updates).Error; err != nil {
				return err
			}
			if err := tx.First(&guest, "id = ?", guest.ID).Error; err != nil {
				return err
			}
			result = &guest
			return nil
		}
		if err != nil {
			return err
		}

		// The identity already has a record (signed in elsewhere before this
		// guest session). Union the visited cities onto it, then drop the
		// guest. The union is written before the delete so a failure can only
		// leave a harmless duplicate, never lost data.
		var guestVisits []models.VisitedCity
		if err := tx.Where("user_id = ?", guest.ID).Find(&guestVisits).Error; err != nil {
			return err
		}

		existingCities := make(map[string]struct{})
		var existingVisits []models.VisitedCity
		if err := tx.Where("user_id = ?", existing.ID).Find(&existingVisits).Error; err != nil {
			return err
		}
		for _, v := range existingVisits {
			existingCities[v.CityID] = struct{}{}
		}

		for _, v := range guestVisits {
			if _, seen := existingCities[v.CityID]; seen {
				continue
			}
			if err := tx.Create(&models.VisitedCity{UserID: existing.ID, CityID: v.CityID}).Error; err != nil {
				return err
			}
		}

		if existing.CurrentCityID == nil && guest.CurrentCityID != nil {
			if err := tx.Model(&existing).Update("current_city_id", *guest.CurrentCityID).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", guest.ID).Delete(&models.VisitedCity{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Delete(&guest).Error; err != nil {
			return err
		}

		if err := tx.First(&existing, "id = ?", existing.ID).Error; err != nil {
			return err
		}
		result = &existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("guest migrated to authenticated account",
		zap.String("guest_id", guestUserID),
		logger.WithUserID(result.ID),
	)
	return result, nil
}

// GetByID fetches a user by internal id.
func (s *Service) GetByID(ctx context.Context, userID string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}
	return &user, nil
}

// JoinCity records a visit to a city (duplicate-free) and makes it the user's
// current city.
func (s *Service) JoinCity(ctx context.Context, userID, cityID string) error {
	var city models.City
	if err := s.db.WithContext(ctx).First(&city, "id = ?", cityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.NotFound("city")
		}
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.VisitedCity
		err := tx.Where("user_id = ? AND city_id = ?", userID, cityID).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			if err := tx.Create(&models.VisitedCity{UserID: userID, CityID: cityID}).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		return tx.Model(&models.User{}).Where("id = ?", userID).
			Update("current_city_id", cityID).Error
	})
}

// VisitedCityIDs returns the ids of all cities the user has joined.
func (s *Service) VisitedCityIDs(ctx context.Context, userID string) ([]string, error) {
	var cityIDs []string
	err := s.db.WithContext(ctx).Model(&models.VisitedCity{}).
		Where("user_id = ?", userID).
		Pluck("city_id", &cityIDs).Error
	return cityIDs, err
}

// TouchLastSeen updates the user's last-active timestamp.
func (s *Service) TouchLastSeen(ctx context.Context, userID string) error {
	now := time.Now().UTC()
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_seen_at", now).Error
}

// UpdateProfile applies a typed partial update to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update UserUpdate) (*models.User, error) {
	fields := update.fields()
	if len(fields) == 0 {
		return nil, errors.BadRequest("no fields to update")
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.NotFound("user")
	}
	return s.GetByID(ctx, userID)
}

// Anonymize is the canonical account-deletion path: it strips identity and
// profile data but keeps the row so message and comment author references
// stay valid.
func (s *Service) Anonymize(ctx context.Context, userID string) error {
	updates := map[string]interface{}{
		"auth_id":         nil,
		"session_id":      nil,
		"username":        "deleted user",
		"avatar_url":      "",
		"bio":             "",
		"contact":         "",
		"email":           nil,
		"birth_date":      nil,
		"location":        "",
		"notify_messages": nil,
		"notify_interest": nil,
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.NotFound("user")
	}
	return nil
}

// HardDelete permanently removes the user row and their visited-city links.
// It orphans authored content, which is why Anonymize is the canonical path;
// this exists only for the admin CLI.
func (s *Service) HardDelete(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.VisitedCity{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Delete(&models.User{}, "id = ?", userID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return errors.NotFound("user")
		}
		return nil
	})
}
