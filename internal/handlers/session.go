package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type syncRequest struct {
	ExternalID string  `json:"external_id"`
	Username   string  `json:"username"`
	AvatarURL  string  `json:"avatar_url"`
	Email      *string `json:"email"`
	GuestToken string  `json:"guest_token"`
}

// SyncSession bootstraps a session. With an external_id the caller is an
// authenticated user coming back from the identity provider; a guest token
// sent alongside is migrated into the account. Without one the caller gets
// (or keeps) a guest session.
// POST /api/v1/session/sync
func (h *Handlers) SyncSession(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid request body")
		return
	}

	if req.ExternalID != "" {
		session, err := h.auth.SyncAuthenticated(c.Request.Context(),
			req.ExternalID, req.Username, req.AvatarURL, req.Email, req.GuestToken)
		if err != nil {
			util.RespondServiceError(c, err)
			return
		}
		metrics.Get().SessionsSyncedTotal.WithLabelValues("authenticated").Inc()
		c.JSON(http.StatusOK, session)
		return
	}

	session, err := h.auth.SyncGuest(c.Request.Context(), req.GuestToken, req.Username)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	metrics.Get().SessionsSyncedTotal.WithLabelValues("guest").Inc()
	c.JSON(http.StatusOK, session)
}

// Heartbeat stamps the caller's last-seen time.
// POST /api/v1/session/heartbeat
func (h *Handlers) Heartbeat(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.identity.TouchLastSeen(c.Request.Context(), userID); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
