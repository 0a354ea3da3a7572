package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
)

// TokenTTL is how long an issued session token stays valid.
const TokenTTL = 24 * time.Hour

// Service issues and validates session tokens. Authenticated sessions carry
// a signed JWT, guests carry an opaque session token.
type Service struct {
	db        *gorm.DB
	jwtSecret []byte
	identity  *identity.Service
}

func NewService(db *gorm.DB, jwtSecret []byte, identitySvc *identity.Service) *Service {
	return &Service{db: db, jwtSecret: jwtSecret, identity: identitySvc}
}

// Session is what a sync or sign-in hands back to the client.
type Session struct {
	Token     string      `json:"token"`
	User      models.User `json:"user"`
	Guest     bool        `json:"guest"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// SyncAuthenticated resolves the externally authenticated identity to a local
// user and issues a JWT for it. A guest session token passed alongside
// triggers the guest-to-authenticated migration first, folding the guest's
// visited cities into the account.
func (s *Service) SyncAuthenticated(ctx context.Context, externalID, username, avatarURL string, email *string, guestToken string) (*Session, error) {
	var user *models.User

	if guestToken != "" {
		if guest, err := s.ValidateGuestToken(ctx, guestToken); err == nil {
			migrated, err := s.identity.MigrateGuestToAuthenticated(ctx, guest.ID, externalID, username, avatarURL)
			if err != nil {
				return nil, err
			}
			user = migrated
			metrics.Get().GuestMigrationsTotal.WithLabelValues("migrated").Inc()
		} else {
			// An unknown guest token just means there is nothing to migrate
			metrics.Get().GuestMigrationsTotal.WithLabelValues("skipped").Inc()
		}
	}

	if user == nil {
		resolved, err := s.identity.ResolveOrCreateAuthenticated(ctx, externalID, username, avatarURL, email)
		if err != nil {
			return nil, err
		}
		user = resolved
	}

	token, expiresAt, err := s.issueJWT(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, User: *user, ExpiresAt: expiresAt}, nil
}

// SyncGuest resolves or creates a guest user for a session token, minting a
// fresh token when none is supplied.
func (s *Service) SyncGuest(ctx context.Context, guestToken, username string) (*Session, error) {
	if guestToken == "" {
		guestToken = uuid.New().String()
	}
	if username == "" {
		suffix := guestToken
		if len(suffix) > 8 {
			suffix = suffix[:8]
		}
		username = "traveler-" + suffix
	}

	user, err := s.identity.ResolveOrCreateGuest(ctx, guestToken, username)
	if err != nil {
		return nil, err
	}

	return &Session{
		Token:     guestToken,
		User:      *user,
		Guest:     true,
		ExpiresAt: time.Now().Add(TokenTTL),
	}, nil
}

func (s *Service) issueJWT(user *models.User) (string, time.Time, error) {
	expiresAt := time.Now().Add(TokenTTL)

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"exp":     expiresAt.Unix(),
		"iat":     time.Now().Unix(),
	}
	if user.AuthID != nil {
		claims["auth_id"] = *user.AuthID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT and returns the fresh user it names.
func (s *Service) ValidateToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, stderrors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, stderrors.New("invalid user_id in token")
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	return &user, nil
}

// ValidateGuestToken resolves an opaque guest session token to its user.
func (s *Service) ValidateGuestToken(ctx context.Context, guestToken string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "session_id = ?", guestToken).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, stderrors.New("unknown guest session")
		}
		return nil, err
	}
	return &user, nil
}
