package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a Trek Together account. A guest has SessionID set and
// AuthID empty; once the account is claimed through the identity provider,
// AuthID is set and SessionID cleared. Both are empty only for an anonymized
// (soft-deleted) account.
type User struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	// External identity provider id (present iff authenticated)
	AuthID *string `gorm:"uniqueIndex" json:"-"`
	// Self-issued guest session id (present iff never authenticated)
	SessionID *string `gorm:"uniqueIndex" json:"-"`

	Username  string `gorm:"not null" json:"username"`
	AvatarURL string `json:"avatar_url"`

	// Profile data
	Bio       string     `gorm:"type:text" json:"bio"`
	Contact   string     `json:"contact"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Location  string     `gorm:"type:text" json:"location"`
	Email     *string    `gorm:"index" json:"email,omitempty"`

	// City membership
	CurrentCityID *string `gorm:"type:uuid;index" json:"current_city_id,omitempty"`
	CurrentCity   *City   `gorm:"foreignKey:CurrentCityID" json:"current_city,omitempty"`

	// Activity tracking
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	// Notification preferences
	NotifyMessages *bool `json:"notify_messages,omitempty"`
	NotifyInterest *bool `json:"notify_interest,omitempty"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAuthenticated reports whether the user has a verified external identity.
// Guests cannot post, comment, like, block, or message.
func (u *User) IsAuthenticated() bool {
	return u.AuthID != nil && *u.AuthID != ""
}

// City is a joinable chat destination (city chat rooms also roll up into a
// country room keyed by the country code).
type City struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"not null;index" json:"name"`
	Country     string  `gorm:"not null" json:"country"`
	CountryCode string  `gorm:"not null;index" json:"country_code"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisitedCity records that a user has joined a city. One row per (user, city)
// pair; order is irrelevant.
type VisitedCity struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;uniqueIndex:idx_visited_pair" json:"user_id"`
	CityID string `gorm:"not null;uniqueIndex:idx_visited_pair" json:"city_id"`
	City   City   `gorm:"foreignKey:CityID" json:"city,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (VisitedCity) TableName() string {
	return "visited_cities"
}

// UserBlock is a directed block edge (blocker -> blocked). Visibility
// filtering treats it symmetrically; the direction only matters for unblock.
type UserBlock struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	BlockerID string `gorm:"not null;uniqueIndex:idx_block_pair;index" json:"blocker_id"`
	Blocker   User   `gorm:"foreignKey:BlockerID" json:"blocker,omitempty"`
	BlockedID string `gorm:"not null;uniqueIndex:idx_block_pair;index" json:"blocked_id"`
	Blocked   User   `gorm:"foreignKey:BlockedID" json:"blocked,omitempty"`
	Reason    string `gorm:"type:text" json:"reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}

// BeforeCreate hooks generate UUIDs application-side so the same models
// migrate on both postgres and the sqlite test databases.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (c *City) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (v *VisitedCity) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = generateUUID()
	}
	return nil
}

func (b *UserBlock) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = generateUUID()
	}
	return nil
}

func generateUUID() string {
	return uuid.New().String()
}
