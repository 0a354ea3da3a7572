package messages

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/errors"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

const MaxMessageLength = 2000

// Service owns one-to-one direct messages.
type Service struct {
	db     *gorm.DB
	blocks *blocks.Registry
}

func NewService(db *gorm.DB, registry *blocks.Registry) *Service {
	return &Service{db: db, blocks: registry}
}

// ConversationID derives the shared key for a user pair: the two ids sorted
// lexicographically and joined with ':'. Both sides compute the same key, and
// it doubles as the typing-indicator conversation id.
func ConversationID(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + ":" + userB
}

// Send validates and stores a direct message. Sending to a user either side
// of a block relationship fails with Forbidden.
func (s *Service) Send(ctx context.Context, senderID, recipientID, content string) (*models.DirectMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ValidationRequired("content")
	}
	if len(content) > MaxMessageLength {
		return nil, errors.ValidationTooLong("content", MaxMessageLength, len(content))
	}
	if senderID == recipientID {
		return nil, errors.BadRequest("cannot message yourself")
	}

	var recipient models.User
	if err := s.db.WithContext(ctx).First(&recipient, "id = ?", recipientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.NotFound("user")
		}
		return nil, err
	}

	blocked, err := s.blocks.IsBlocked(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, errors.Forbidden("cannot message this user")
	}

	message := &models.DirectMessage{
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// Conversation is one entry in a user's inbox.
type Conversation struct {
	ConversationID string               `json:"conversation_id"`
	OtherUser      models.User          `json:"other_user"`
	LastMessage    models.DirectMessage `json:"last_message"`
	UnreadCount    int64                `json:"unread_count"`
}

// ListConversations returns the user's conversations ordered by most recent
// message, skipping counterparts in the user's effective block set.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	blockSet, err := s.blocks.EffectiveBlockSet(ctx, userID)
	if err != nil {
		return nil, err
	}

	var rows []models.DirectMessage
	err = s.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// rows are newest first, so the first row seen per conversation is its
	// latest message
	seen := make(map[string]bool)
	var conversations []Conversation
	for _, m := range rows {
		if seen[m.ConversationID] {
			continue
		}
		seen[m.ConversationID] = true

		otherID := m.SenderID
		if otherID == userID {
			otherID = m.RecipientID
		}
		if _, hidden := blockSet[otherID]; hidden {
			continue
		}

		var other models.User
		if err := s.db.WithContext(ctx).First(&other, "id = ?", otherID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				continue
			}
			return nil, err
		}

		var unread int64
		err := s.db.WithContext(ctx).Model(&models.DirectMessage{}).
			Where("conversation_id = ? AND recipient_id = ? AND read_at IS NULL", m.ConversationID, userID).
			Count(&unread).Error
		if err != nil {
			return nil, err
		}

		conversations = append(conversations, Conversation{
			ConversationID: m.ConversationID,
			OtherUser:      other,
			LastMessage:    m,
			UnreadCount:    unread,
		})
	}
	return conversations, nil
}

// History returns the message history between the user and another user,
// newest first. A conversation with a blocked counterpart reads as empty.
func (s *Service) History(ctx context.Context, userID, otherID string, limit, offset int) ([]models.DirectMessage, error) {
	blocked, err := s.blocks.IsBlocked(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return []models.DirectMessage{}, nil
	}

	var messages []models.DirectMessage
	err = s.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", ConversationID(userID, otherID)).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead stamps every unread message the user received in a conversation.
// Returns the number of messages marked.
func (s *Service) MarkRead(ctx context.Context, userID, otherID string) (int64, error) {
	now := time.Now().UTC()
	result := s.db.WithContext(ctx).Model(&models.DirectMessage{}).
		Where("conversation_id = ? AND recipient_id = ? AND read_at IS NULL", ConversationID(userID, otherID), userID).
		Update("read_at", now)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
