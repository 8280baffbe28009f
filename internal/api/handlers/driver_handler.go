package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/view"
)

type DriverHandler struct {
	Store *store.Store
}

// ListDrivers returns the driver rows plus the free count. Markers are
// omitted here; the diff stream only makes sense over the WebSocket.
func (h *DriverHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.Store.ListDrivers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query drivers"})
		return
	}

	_, payload := view.ReduceDrivers(view.MarkerState{}, drivers)
	c.JSON(http.StatusOK, gin.H{
		"rows":      payload.Rows,
		"freeCount": payload.FreeCount,
	})
}

type UpdateLocationRequest struct {
	Lat *float64 `json:"lat" binding:"required"`
	Lon *float64 `json:"lon" binding:"required"`
}

// UpdateLocation is the ingest path for the external tracker feed. The
// driver document itself stays owned by the fleet process; only position
// and freshness change here.
func (h *DriverHandler) UpdateLocation(c *gin.Context) {
	driverID := c.Param("id")

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Lat < -90 || *req.Lat > 90 || *req.Lon < -180 || *req.Lon > 180 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Coordinates out of range"})
		return
	}

	err := h.Store.UpdateDriverLocation(c.Request.Context(), driverID, *req.Lat, *req.Lon)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update location"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
