package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/chat"
	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type sendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

func roomFromParams(c *gin.Context) (models.RoomType, string, bool) {
	switch c.Param("roomType") {
	case "city":
		return models.RoomTypeCity, c.Param("roomId"), true
	case "country":
		return models.RoomTypeCountry, c.Param("roomId"), true
	}
	util.RespondBadRequest(c, "room type must be city or country")
	return "", "", false
}

// SendRoomMessage posts a message to a city or country chat room.
// POST /api/v1/chat/:roomType/:roomId/messages
func (h *Handlers) SendRoomMessage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	roomType, roomID, ok := roomFromParams(c)
	if !ok {
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	message, err := h.chat.Send(c.Request.Context(), userID, roomType, roomID, req.Content)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	// Sending clears the sender's typing indicator for the room
	_ = h.typing.Clear(c.Request.Context(), userID, chat.RoomConversationID(roomType, roomID))

	metrics.Get().ChatMessagesTotal.WithLabelValues(string(roomType)).Inc()
	c.JSON(http.StatusCreated, gin.H{"message": message})
}

// ListRoomMessages returns a room's messages, block-filtered for the viewer.
// GET /api/v1/chat/:roomType/:roomId/messages
func (h *Handlers) ListRoomMessages(c *gin.Context) {
	roomType, roomID, ok := roomFromParams(c)
	if !ok {
		return
	}

	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 50, 200)

	messages, err := h.chat.List(c.Request.Context(),
		util.ViewerIDFromContext(c), roomType, roomID, limit, offset)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages, "limit": limit, "offset": offset})
}
