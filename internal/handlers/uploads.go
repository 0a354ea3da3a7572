package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

// 10MB cap on image uploads
const maxImageBytes = 10 << 20

// UploadImage stores an image blob and returns its storage key and public
// URL for a later post create.
// POST /api/v1/uploads/images
func (h *Handlers) UploadImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if h.images == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image uploads are not configured"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image file is required")
		return
	}
	if fileHeader.Size > maxImageBytes {
		util.RespondBadRequest(c, "image exceeds the 10MB limit")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return
	}

	result, err := h.images.UploadImage(c.Request.Context(), data, userID, fileHeader.Filename)
	if err != nil {
		util.RespondInternalError(c, "failed to store image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"storage_key": result.Key,
		"url":         result.URL,
		"size":        result.Size,
	})
}
