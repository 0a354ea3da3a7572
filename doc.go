// Package backend documents the Trek Together API server.

// This package contains the main application entry point. The actual API
// documentation is organized into subpackages:

// - internal/handlers: HTTP request handlers for all API endpoints
// - internal/models: Data models and database schemas
// - internal/auth: Session tokens and guest/authenticated identity sync
// - internal/identity: User resolution, profiles, and city membership
// - internal/blocks: User block registry and visibility filtering
// - internal/presence: Typing indicators and their expiry sweep
// - internal/posts: Trail reports with likes, comments, and images
// - internal/requests: Trek buddy requests and interest ledgers
// - internal/chat: City and country chat rooms
// - internal/messages: Direct messages between users
// - internal/reports: Moderation report ledger
// - internal/storage: File storage (S3) operations
// - internal/database: Database connection and migrations
// - internal/middleware: HTTP middleware (auth, rate limiting, etc.)

// See the individual package documentation for detailed API reference.
package backend
