package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type typingRequest struct {
	ConversationID string                  `json:"conversation_id" binding:"required"`
	Type           models.ConversationType `json:"type" binding:"required"`
}

// SignalTyping marks the caller as typing in a conversation for the next
// few seconds. Safe to repeat; each call extends the window.
// POST /api/v1/typing
func (h *Handlers) SignalTyping(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "conversation_id and type are required")
		return
	}

	switch req.Type {
	case models.ConversationCity, models.ConversationCountry, models.ConversationDirect:
	default:
		util.RespondBadRequest(c, "unknown conversation type")
		return
	}

	if err := h.typing.Signal(c.Request.Context(), userID, req.ConversationID, req.Type); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().TypingSignalsTotal.WithLabelValues(string(req.Type)).Inc()
	c.JSON(http.StatusOK, gin.H{"typing": true})
}

// ClearTyping removes the caller's typing indicator for a conversation.
// No-op when none is active.
// DELETE /api/v1/typing/:conversationId
func (h *Handlers) ClearTyping(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.typing.Clear(c.Request.Context(), userID, c.Param("conversationId")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": false})
}

// ListTyping returns who is currently typing in a conversation, excluding
// the caller.
// GET /api/v1/typing/:conversationId
func (h *Handlers) ListTyping(c *gin.Context) {
	viewerID := util.ViewerIDFromContext(c)

	typing, err := h.typing.ListTyping(c.Request.Context(), c.Param("conversationId"), viewerID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"typing": typing})
}
