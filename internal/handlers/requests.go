package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/requests"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type createRequestRequest struct {
	Title     string     `json:"title" binding:"required"`
	Body      string     `json:"body" binding:"required"`
	StartDate *time.Time `json:"start_date"`
}

// CreateRequest creates a trek buddy request in a city.
// POST /api/v1/cities/:id/requests
func (h *Handlers) CreateRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "title and body are required")
		return
	}

	request, err := h.requests.Create(c.Request.Context(), userID, requests.CreateInput{
		Title:     req.Title,
		Body:      req.Body,
		CityID:    c.Param("id"),
		StartDate: req.StartDate,
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().RequestsCreatedTotal.WithLabelValues().Inc()
	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// ListRequestsByCity returns a city's trek buddy requests, block-filtered
// for the viewer. Closed requests are hidden unless include_closed is set.
// GET /api/v1/cities/:id/requests
func (h *Handlers) ListRequestsByCity(c *gin.Context) {
	limit, offset := util.ParsePagination(c.Query("limit"), c.Query("offset"), 20, 100)
	includeClosed := c.Query("include_closed") == "true"

	views, err := h.requests.ListByCity(c.Request.Context(),
		util.ViewerIDFromContext(c), c.Param("id"), includeClosed, limit, offset)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": views, "limit": limit, "offset": offset})
}

// GetRequest returns a single trek buddy request.
// GET /api/v1/requests/:id
func (h *Handlers) GetRequest(c *gin.Context) {
	view, err := h.requests.Get(c.Request.Context(), util.ViewerIDFromContext(c), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": view})
}

// ToggleInterest flips the caller's interest in a request.
// POST /api/v1/requests/:id/interest
func (h *Handlers) ToggleInterest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	interested, err := h.requests.ToggleInterest(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interested": interested})
}

// ListInterested returns who is interested in the caller's request.
// GET /api/v1/requests/:id/interested
func (h *Handlers) ListInterested(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	interests, err := h.requests.ListInterested(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"interested": interests})
}

// AddRequestComment adds a comment to a request.
// POST /api/v1/requests/:id/comments
func (h *Handlers) AddRequestComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	comment, err := h.requests.AddComment(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// ListRequestComments returns a request's comments, block-filtered for the
// viewer.
// GET /api/v1/requests/:id/comments
func (h *Handlers) ListRequestComments(c *gin.Context) {
	comments, err := h.requests.ListComments(c.Request.Context(),
		util.ViewerIDFromContext(c), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// DeleteRequestComment removes the caller's own comment.
// DELETE /api/v1/requests/comments/:commentId
func (h *Handlers) DeleteRequestComment(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.requests.DeleteComment(c.Request.Context(), userID, c.Param("commentId")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

type setStatusRequest struct {
	Status models.RequestStatus `json:"status" binding:"required"`
}

// SetRequestStatus opens or closes the caller's own request.
// PATCH /api/v1/requests/:id/status
func (h *Handlers) SetRequestStatus(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "status is required")
		return
	}

	request, err := h.requests.SetStatus(c.Request.Context(), userID, c.Param("id"), req.Status)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request": request})
}

// DeleteRequest removes the caller's own request and its interest and
// comment ledgers.
// DELETE /api/v1/requests/:id
func (h *Handlers) DeleteRequest(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if err := h.requests.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
