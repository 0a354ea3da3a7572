package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/JamesDimonaco/trek-together-sub000/internal/auth"
	"github.com/JamesDimonaco/trek-together-sub000/internal/database"
	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/logger"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupRouter(t *testing.T) (*gin.Engine, *auth.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.MigrateModels(db))

	authService := auth.NewService(db, []byte("test-secret"), identity.NewService(db))

	router := gin.New()
	router.Use(AuthMiddleware(authService))
	router.GET("/whoami", RequireUser(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": util.ViewerIDFromContext(c)})
	})
	router.POST("/members-only", RequireAuthenticated(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router, authService
}

func TestAuthMiddleware_AnonymousRejectedByRequireUser(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_JWTResolvesUser(t *testing.T) {
	router, authService := setupRouter(t)

	session, err := authService.SyncAuthenticated(context.Background(), "ext-1", "alice", "", nil, "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.User.ID)
}

func TestAuthMiddleware_GuestTokenResolvesUser(t *testing.T) {
	router, authService := setupRouter(t)

	session, err := authService.SyncGuest(context.Background(), "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("X-Guest-Token", session.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), session.User.ID)
}

func TestRequireAuthenticated_GuestsBarred(t *testing.T) {
	router, authService := setupRouter(t)

	guest, err := authService.SyncGuest(context.Background(), "", "")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/members-only", nil)
	req.Header.Set("X-Guest-Token", guest.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTHENTICATION_REQUIRED")

	session, err := authService.SyncAuthenticated(context.Background(), "ext-1", "alice", "", nil, "")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/members-only", nil)
	req.Header.Set("Authorization", "Bearer "+session.Token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_BadTokenFallsThroughToAnonymous(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
