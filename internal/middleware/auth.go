package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/auth"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

// AuthMiddleware resolves the caller's session and stores the user in the
// Gin context. A Bearer token is treated as a JWT, the X-Guest-Token header
// as an opaque guest session token. Resolution is optional here; handlers
// that need a user gate on it themselves.
func AuthMiddleware(authService *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token := strings.TrimPrefix(header, "Bearer ")
			if user, err := authService.ValidateToken(c.Request.Context(), token); err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		} else if guestToken := c.GetHeader("X-Guest-Token"); guestToken != "" {
			if user, err := authService.ValidateGuestToken(c.Request.Context(), guestToken); err == nil {
				c.Set("user", user)
				c.Set("user_id", user.ID)
			}
		}
		c.Next()
	}
}

// RequireUser aborts with 401 when no session resolved. Guests pass.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get("user_id"); !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAuthenticated aborts when the caller is a guest or anonymous.
// Posting, commenting, liking, blocking and messaging all sit behind this.
func RequireAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := util.GetUserFromContext(c)
		if !exists {
			c.Abort()
			return
		}
		if !user.IsAuthenticated() {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
				"code":  "AUTHENTICATION_REQUIRED",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
