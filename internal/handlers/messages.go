package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/messages"
	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

// SendDirectMessage sends a direct message to another user.
// POST /api/v1/messages/:userId
func (h *Handlers) SendDirectMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	recipientID := c.Param("userId")
	message, err := h.messages.Send(c.Request.Context(), userID, recipientID, req.Content)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	// Sending clears the sender's typing indicator for the conversation
	_ = h.typing.Clear(c.Request.Context(), userID, messages.ConversationID(userID, recipientID))

	metrics.Get().DirectMessagesTotal.WithLabelValues().Inc()
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// ListConversations returns the caller's inbox, most recent first.
// GET /api/v1/messages
func (h *Handlers) ListConversations(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	conversations, err := h.messages.ListConversations(c.Request.Context(), userID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": conversations})
}

// GetConversation returns the message history with another user and marks
// the caller's side read.
// GET /api/v1/messages/:userId
func (h *Handlers) GetConversation(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	otherID := c.Param("userId")
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 50, 200)

	history, err := h.messages.History(c.Request.Context(), userID, otherID, limit, offset)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if _, err := h.messages.MarkRead(c.Request.Context(), userID, otherID); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": history, "limit": limit, "offset": offset})
}
