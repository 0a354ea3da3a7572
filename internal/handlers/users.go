package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/identity"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

// GetMe returns the caller's own profile.
// GET /api/v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	user, err := h.identity.GetByID(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	visited, err := h.identity.VisitedCityIDs(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":           user,
		"visited_cities": visited,
	})
}

// GetUser returns another user's public profile. A profile either side of a
// block relationship with the viewer reads as missing.
// GET /api/v1/users/:id
func (h *Handlers) GetUser(c *gin.Context) {
	targetID := c.Param("id")

	user, err := h.identity.GetByID(c.Request.Context(), targetID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if viewerID := util.ViewerIDFromContext(c); viewerID != "" && viewerID != targetID {
		blocked, err := h.blocks.IsBlocked(c.Request.Context(), viewerID, targetID)
		if err != nil {
			util.RespondServiceError(c, err)
			return
		}
		if blocked {
			util.RespondNotFound(c, "user")
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type updateProfileRequest struct {
	Username       *string    `json:"username"`
	AvatarURL      *string    `json:"avatar_url"`
	Bio            *string    `json:"bio"`
	Contact        *string    `json:"contact"`
	BirthDate      *time.Time `json:"birth_date"`
	Location       *string    `json:"location"`
	Email          *string    `json:"email"`
	NotifyMessages *bool      `json:"notify_messages"`
	NotifyInterest *bool      `json:"notify_interest"`
}

// UpdateProfile patches the caller's profile fields. Only the fields present
// in the body are written.
// PATCH /api/v1/users/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	user, err := h.identity.UpdateProfile(c.Request.Context(), userID, identity.UserUpdate{
		Username:       req.Username,
		AvatarURL:      req.AvatarURL,
		Bio:            req.Bio,
		Contact:        req.Contact,
		BirthDate:      req.BirthDate,
		Location:       req.Location,
		Email:          req.Email,
		NotifyMessages: req.NotifyMessages,
		NotifyInterest: req.NotifyInterest,
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// JoinCity adds a city to the caller's visited set and makes it current.
// POST /api/v1/cities/:id/join
func (h *Handlers) JoinCity(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.identity.JoinCity(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"joined": true})
}

// DeleteAccount anonymizes the caller's account: identity and profile fields
// are stripped but the row stays so message and comment author references
// keep resolving.
// DELETE /api/v1/users/me
func (h *Handlers) DeleteAccount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.identity.Anonymize(c.Request.Context(), userID); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
