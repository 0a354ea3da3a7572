package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type blockRequest struct {
	Reason string `json:"reason"`
}

// BlockUser places a block edge on another user. Blocking is symmetric in
// effect: both sides stop seeing each other's content immediately.
// POST /api/v1/users/:id/block
func (h *Handlers) BlockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req blockRequest
	// Body is optional, a bare block has no reason
	_ = c.ShouldBindJSON(&req)

	if err := h.blocks.Block(c.Request.Context(), userID, c.Param("id"), req.Reason); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().BlocksTotal.WithLabelValues("block").Inc()
	c.JSON(http.StatusOK, gin.H{"blocked": true})
}

// UnblockUser removes the caller's block edge on another user. An edge the
// other user placed stays in force.
// DELETE /api/v1/users/:id/block
func (h *Handlers) UnblockUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.blocks.Unblock(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().BlocksTotal.WithLabelValues("unblock").Inc()
	c.JSON(http.StatusOK, gin.H{"blocked": false})
}

// ListBlocked returns the users the caller has blocked, newest first.
// GET /api/v1/users/me/blocked
func (h *Handlers) ListBlocked(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	blockedUsers, err := h.blocks.ListBlocked(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"blocked": blockedUsers})
}
