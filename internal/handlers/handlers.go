package handlers

import (
	"github.com/JamesDimonaco/trek-together-sub000/internal/auth"
	"github.com/JamesDimonaco/trek-together-sub000/internal/blocks"
	"github.com/JamesDimonaco/trek-together-sub000/internal/chat"
	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/messages"
	"github.com/JamesDimonaco/trek-together-sub000/internal/posts"
	"github.com/JamesDimonaco/trek-together-sub000/internal/presence"
	"github.com/JamesDimonaco/trek-together-sub000/internal/reports"
	"github.com/JamesDimonaco/trek-together-sub000/internal/requests"
	"github.com/JamesDimonaco/trek-together-sub000/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth     *auth.Service
	identity *identity.Service
	blocks   *blocks.Registry
	typing   *presence.Tracker
	posts    *posts.Service
	requests *requests.Service
	chat     *chat.Service
	messages *messages.Service
	reports  *reports.Service
	images   *storage.ImageStore
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	authService *auth.Service,
	identityService *identity.Service,
	blockRegistry *blocks.Registry,
	typingTracker *presence.Tracker,
	postService *posts.Service,
	requestService *requests.Service,
	chatService *chat.Service,
	messageService *messages.Service,
	reportService *reports.Service,
) *Handlers {
	return &Handlers{
		auth:     authService,
		identity: identityService,
		blocks:   blockRegistry,
		typing:   typingTracker,
		posts:    postService,
		requests: requestService,
		chat:     chatService,
		messages: messageService,
		reports:  reportService,
	}
}

// SetImageStore sets the S3 image store for upload endpoints
func (h *Handlers) SetImageStore(store *storage.ImageStore) {
	h.images = store
}
