package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/metrics"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

type createReportRequest struct {
	Reason      string `json:"reason" binding:"required"`
	Description string `json:"description"`
}

// ReportUser files a moderation report against another user.
// POST /api/v1/users/:id/report
func (h *Handlers) ReportUser(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "reason is required")
		return
	}

	report, err := h.reports.Create(c.Request.Context(), userID, c.Param("id"), req.Reason, req.Description)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	metrics.Get().ReportsFiledTotal.WithLabelValues().Inc()
	c.JSON(http.StatusCreated, gin.H{"report": report})
}
