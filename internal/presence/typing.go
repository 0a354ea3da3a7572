// Package presence tracks short-TTL typing indicators. Records are logically
// absent once expired; a periodic sweep reclaims the rows.
package presence

import (
	"context"
	"time"

	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"gorm.io/gorm"
)

// TypingTTL is how long a typing signal stays live without a refresh. The UI
// refreshes on every keystroke and clears on send or blur; the tracker only
// honors the expiry.
const TypingTTL = 5 * time.Second

// TypingUser is one entry in a conversation's typing list.
type TypingUser struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Tracker manages typing indicator records.
type Tracker struct {
	db *gorm.DB
	// now is swappable for expiry tests
	now func() time.Time
}

// NewTracker creates a typing tracker on the given database connection.
func NewTracker(db *gorm.DB) *Tracker {
	return &Tracker{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Signal records that the user is typing in the conversation. If a record for
// the (user, conversation) pair already exists, live or stale, its expiry is
// advanced in place; no duplicate is ever created.
func (t *Tracker) Signal(ctx context.Context, userID, conversationID string, convType models.ConversationType) error {
	expiresAt := t.now().Add(TypingTTL)

	var existing models.TypingIndicator
	err := t.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		First(&existing).Error
	if err == nil {
		return t.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
			"expires_at": expiresAt,
			"type":       convType,
		}).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	indicator := models.TypingIndicator{
		UserID:         userID,
		ConversationID: conversationID,
		Type:           convType,
		ExpiresAt:      expiresAt,
	}
	return t.db.WithContext(ctx).Create(&indicator).Error
}

// Clear removes the user's indicator for the conversation. No-op if absent.
func (t *Tracker) Clear(ctx context.Context, userID, conversationID string) error {
	return t.db.WithContext(ctx).
		Where("user_id = ? AND conversation_id = ?", userID, conversationID).
		Delete(&models.TypingIndicator{}).Error
}

// ListTyping returns who is currently typing in the conversation, resolved to
// usernames, excluding excludeUserID when non-empty. Expired records are
// filtered here, so correctness never depends on the sweep having run.
func (t *Tracker) ListTyping(ctx context.Context, conversationID, excludeUserID string) ([]TypingUser, error) {
	q := t.db.WithContext(ctx).
		Preload("User").
		Where("conversation_id = ? AND expires_at > ?", conversationID, t.now())
	if excludeUserID != "" {
		q = q.Where("user_id <> ?", excludeUserID)
	}

	var indicators []models.TypingIndicator
	if err := q.Find(&indicators).Error; err != nil {
		return nil, err
	}

	typing := make([]TypingUser, 0, len(indicators))
	for _, ind := range indicators {
		typing = append(typing, TypingUser{
			UserID:   ind.UserID,
			Username: ind.User.Username,
		})
	}
	return typing, nil
}

// Sweep physically deletes all expired indicator rows and returns how many it
// removed. Safe to call on any schedule, concurrently with Signal and Clear:
// it only touches rows that are already logically absent.
func (t *Tracker) Sweep(ctx context.Context) (int64, error) {
	res := t.db.WithContext(ctx).
		Where("expires_at <= ?", t.now()).
		Delete(&models.TypingIndicator{})
	return res.RowsAffected, res.Error
}
