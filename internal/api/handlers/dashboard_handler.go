package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/config"
)

type DashboardHandler struct {
	Map      config.MapConfig
	AuthMode string
}

// GetConfig hands the client what it needs to bootstrap: tile source,
// initial viewport and which login flow to present.
func (h *DashboardHandler) GetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"map": gin.H{
			"tileURL":     h.Map.TileURL,
			"attribution": h.Map.Attribution,
			"center":      gin.H{"lat": h.Map.CenterLat, "lon": h.Map.CenterLon},
			"zoom":        h.Map.Zoom,
		},
		"authMode": h.AuthMode,
	})
}
