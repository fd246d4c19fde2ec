package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carecompass/backend/internal/analysis"
)

const defaultSpecialty = "general"

// findDoctors godoc
// @Summary Nearby doctors ranked by rating and open-now
// @Tags doctors
// @Accept json
// @Produce json
// @Param specialty query string false "Specialty keyword"
// @Param lat query number true "Latitude"
// @Param lng query number true "Longitude"
// @Success 200 {object} map[string][]analysis.Doctor
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /api/doctors [get]
// @Router /api/doctors [post]
func (a *App) findDoctors(c *gin.Context) {
	var req doctorsRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if req.Lat == nil || req.Lng == nil {
		writeError(c, http.StatusBadRequest, "lat and lng are required")
		return
	}
	specialty := strings.TrimSpace(req.Specialty)
	if specialty == "" {
		specialty = defaultSpecialty
	}

	places, err := a.places.NearbySearch(c.Request.Context(), PlacesQuery{
		Specialty: specialty,
		Lat:       *req.Lat,
		Lng:       *req.Lng,
	})
	if err != nil {
		a.writeUpstreamError(c, err, "Failed to fetch doctors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctors": analysis.RankDoctors(places)})
}
