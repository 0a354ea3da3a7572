package models

import (
	"time"

	"gorm.io/gorm"
)

// ConversationType tags which surface a typing indicator belongs to.
type ConversationType string

const (
	ConversationCity    ConversationType = "city"
	ConversationCountry ConversationType = "country"
	ConversationDirect  ConversationType = "direct"
)

// TypingIndicator is a TTL presence record: logically absent once ExpiresAt
// has passed, regardless of when the sweep physically removes it. At most one
// row per (user, conversation) pair; a repeated signal advances ExpiresAt in
// place.
type TypingIndicator struct {
	ID             string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID         string           `gorm:"not null;uniqueIndex:idx_typing_pair" json:"user_id"`
	User           User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ConversationID string           `gorm:"not null;uniqueIndex:idx_typing_pair" json:"conversation_id"`
	Type           ConversationType `gorm:"not null" json:"type"`
	ExpiresAt      time.Time        `gorm:"not null;index" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (TypingIndicator) TableName() string {
	return "typing_indicators"
}

func (t *TypingIndicator) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateUUID()
	}
	return nil
}
