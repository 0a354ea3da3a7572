package identity

import (
	"context"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

// ListCities returns all cities, optionally filtered by country code,
// alphabetical by name.
func (s *Service) ListCities(ctx context.Context, countryCode string) ([]models.City, error) {
	query := s.db.WithContext(ctx).Order("name ASC")
	if countryCode != "" {
		query = query.Where("country_code = ?", countryCode)
	}

	var cities []models.City
	if err := query.Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

// GetCity returns one city by id.
func (s *Service) GetCity(ctx context.Context, cityID string) (*models.City, error) {
	var city models.City
	if err := s.db.WithContext(ctx).First(&city, "id = ?", cityID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("city")
		}
		return nil, err
	}
	return &city, nil
}

// CityTravelers returns the users whose current city is the given one,
// most recently seen first. The viewer's effective block set is applied by
// the caller.
func (s *Service) CityTravelers(ctx context.Context, cityID string, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("current_city_id = ?", cityID).
		Order("last_seen_at DESC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
