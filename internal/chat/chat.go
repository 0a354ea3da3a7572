package chat

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

const MaxMessageLength = 1000

// Service owns the shared city and country chat rooms.
type Service struct {
	db     *gorm.DB
	blocks *blocks.Registry
}

func NewService(db *gorm.DB, registry *blocks.Registry) *Service {
	return &Service{db: db, blocks: registry}
}

// RoomConversationID is the typing-indicator key for a room.
func RoomConversationID(roomType models.RoomType, roomID string) string {
	return string(roomType) + ":" + roomID
}

// Send validates and stores a message in a city or country room. City rooms
// are keyed by city id and must reference an existing city; country rooms
// are keyed by country code.
func (s *Service) Send(ctx context.Context, userID string, roomType models.RoomType, roomID, content string) (*models.ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ValidationRequired("content")
	}
	if len(content) > MaxMessageLength {
		return nil, errors.ValidationTooLong("content", MaxMessageLength, len(content))
	}

	switch roomType {
	case models.RoomTypeCity:
		var city models.City
		if err := s.db.WithContext(ctx).First(&city, "id = ?", roomID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, errors.NotFound("city")
			}
			return nil, err
		}
	case models.RoomTypeCountry:
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.City{}).
			Where("country_code = ?", roomID).Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errors.NotFound("country")
		}
	default:
		return nil, errors.BadRequest("unknown room type")
	}

	message := &models.ChatMessage{
		RoomType: roomType,
		RoomID:   roomID,
		UserID:   userID,
		Content:  content,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// List returns a room's messages newest first, hiding senders the viewer has
// a block relationship with in either direction.
func (s *Service) List(ctx context.Context, viewerID string, roomType models.RoomType, roomID string, limit, offset int) ([]models.ChatMessage, error) {
	hidden, err := s.blocks.HiddenAuthorIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	query := s.db.WithContext(ctx).
		Preload("User").
		Where("room_type = ? AND room_id = ?", roomType, roomID).
		Order("created_at DESC").
		Limit(limit).Offset(offset)
	if len(hidden) > 0 {
		query = query.Where("user_id NOT IN ?", hidden)
	}

	var messages []models.ChatMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}
