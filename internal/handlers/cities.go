package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JamesDimonaco/trek-together-sub000/internal/models"
	"github.com/JamesDimonaco/trek-together-sub000/internal/util"
)

// ListCities returns all cities, optionally filtered by ?country=CC.
// GET /api/v1/cities
func (h *Handlers) ListCities(c *gin.Context) {
	cities, err := h.identity.ListCities(c.Request.Context(), c.Query("country"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cities": cities})
}

// GetCity returns one city.
// GET /api/v1/cities/:id
func (h *Handlers) GetCity(c *gin.Context) {
	city, err := h.identity.GetCity(c.Request.Context(), c.Param("id"))
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"city": city})
}

// ListCityTravelers returns who is currently in a city, hiding users the
// viewer has a block relationship with.
// GET /api/v1/cities/:id/travelers
func (h *Handlers) ListCityTravelers(c *gin.Context) {
	limit, _ := util.ParsePagination(c.Query("limit"), "", 50, 200)

	travelers, err := h.identity.CityTravelers(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if viewerID := util.ViewerIDFromContext(c); viewerID != "" {
		blockSet, err := h.blocks.EffectiveBlockSet(c.Request.Context(), viewerID)
		if err != nil {
			util.RespondServiceError(c, err)
			return
		}
		visible := make([]models.User, 0, len(travelers))
		for _, u := range travelers {
			if _, hidden := blockSet[u.ID]; !hidden {
				visible = append(visible, u)
			}
		}
		travelers = visible
	}

	c.JSON(http.StatusOK, gin.H{"travelers": travelers})
}
