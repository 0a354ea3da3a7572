package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a trail report shared in a city.
type Post struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CityID   string `gorm:"not null;index" json:"city_id"`
	City     City   `gorm:"foreignKey:CityID" json:"city,omitempty"`

	Title string `gorm:"not null" json:"title"`
	Body  string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostImage is an attached image blob. StorageKey references the object in
// the blob store; release on post delete is best-effort.
type PostImage struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID     string `gorm:"not null;index" json:"post_id"`
	StorageKey string `gorm:"not null" json:"storage_key"`
	URL        string `json:"url"`

	CreatedAt time.Time `json:"created_at"`
}

// PostLike is a toggle ledger row: presence of a (user, post) row means the
// user likes the post.
type PostLike struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;uniqueIndex:idx_post_like_pair" json:"post_id"`
	UserID string `gorm:"not null;uniqueIndex:idx_post_like_pair" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// PostComment is a comment on a trail report.
type PostComment struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID   string `gorm:"not null;index" json:"post_id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// RequestStatus is the open/closed state of a trek buddy request.
type RequestStatus string

const (
	RequestStatusOpen   RequestStatus = "open"
	RequestStatusClosed RequestStatus = "closed"
)

// Request is a "find a trek buddy" post in a city.
type Request struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CityID   string `gorm:"not null;index" json:"city_id"`
	City     City   `gorm:"foreignKey:CityID" json:"city,omitempty"`

	Title     string        `gorm:"not null" json:"title"`
	Body      string        `gorm:"type:text;not null" json:"body"`
	Status    RequestStatus `gorm:"not null;default:open" json:"status"`
	StartDate *time.Time    `json:"start_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RequestInterest is the "I'm interested" toggle ledger. A request's author
// may never hold a row on their own request.
type RequestInterest struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	RequestID string `gorm:"not null;uniqueIndex:idx_interest_pair" json:"request_id"`
	UserID    string `gorm:"not null;uniqueIndex:idx_interest_pair" json:"user_id"`
	User      User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// RequestComment is a comment on a trek buddy request.
type RequestComment struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	RequestID string `gorm:"not null;index" json:"request_id"`
	AuthorID  string `gorm:"not null;index" json:"author_id"`
	Author    User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content   string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// RoomType distinguishes the two community chat room kinds.
type RoomType string

const (
	RoomTypeCity    RoomType = "city"
	RoomTypeCountry RoomType = "country"
)

// ChatMessage is a message in a city or country room. RoomID is the city id
// for city rooms and the country code for country rooms.
type ChatMessage struct {
	ID       string   `gorm:"primaryKey;type:uuid" json:"id"`
	RoomType RoomType `gorm:"not null;index:idx_chat_room" json:"room_type"`
	RoomID   string   `gorm:"not null;index:idx_chat_room" json:"room_id"`
	UserID   string   `gorm:"not null;index" json:"user_id"`
	User     User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content  string   `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// DirectMessage is a one-to-one message. ConversationID is the
// lexicographically sorted pair of user ids joined with ':' so both sides
// land in the same conversation, and doubles as the typing-indicator key.
type DirectMessage struct {
	ID             string `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string `gorm:"not null;index" json:"conversation_id"`
	SenderID       string `gorm:"not null;index" json:"sender_id"`
	Sender         User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID    string `gorm:"not null;index" json:"recipient_id"`
	Content        string `gorm:"type:text;not null" json:"content"`

	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (i *PostImage) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = generateUUID()
	}
	return nil
}

func (l *PostLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (c *PostComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.Status == "" {
		r.Status = RequestStatusOpen
	}
	return nil
}

func (i *RequestInterest) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = generateUUID()
	}
	return nil
}

func (c *RequestComment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}

func (m *DirectMessage) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}
