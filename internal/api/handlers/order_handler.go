package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/internal/dispatch"
	"fleet-dispatch-api-server/internal/store"
	"fleet-dispatch-api-server/internal/validate"
	"fleet-dispatch-api-server/internal/view"
)

type OrderHandler struct {
	Dispatch *dispatch.Service
	Store    *store.Store
}

type CreateOrderRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Priority    string `json:"priority"`
	Plate       string `json:"plate"`
	Project     string `json:"project"`
}

// CreateOrder validates the form and inserts one pending order. Validation
// failures answer before any store call, with the same messages the old
// panel alerted.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := h.Dispatch.CreateOrder(c.Request.Context(), dispatch.CreateOrderInput{
		Origin:      req.Origin,
		Destination: req.Destination,
		Priority:    req.Priority,
		Plate:       req.Plate,
		Project:     req.Project,
	})
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrMissingRoute):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Rellena origen y destino."})
		case errors.Is(err, validate.ErrInvalidPlate):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Matrícula inválida. Ejemplo: 1234-ABC"})
		case errors.Is(err, validate.ErrInvalidProject):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Proyecto inválido. Ejemplo: V429"})
		default:
			// Store failures surface raw so the operator can report them.
			c.JSON(http.StatusInternalServerError, gin.H{"error": "No se pudo crear el servicio: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusCreated, order)
}

// AssignOrder runs the assignment transaction for one order.
func (h *OrderHandler) AssignOrder(c *gin.Context) {
	orderID := c.Param("id")

	driver, err := h.Dispatch.AssignOrder(c.Request.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, dispatch.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "No encuentro ese servicio."})
		case errors.Is(err, dispatch.ErrNoFreeDriver):
			c.JSON(http.StatusConflict, gin.H{"error": "No hay conductores libres ahora mismo."})
		case errors.Is(err, dispatch.ErrOrderNotPending):
			c.JSON(http.StatusConflict, gin.H{"error": "Ese servicio ya está asignado."})
		case errors.Is(err, dispatch.ErrContention):
			c.JSON(http.StatusConflict, gin.H{"error": "No se pudo asignar, inténtalo de nuevo."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error al asignar: " + err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Asignado a " + driver.Name,
		"driver":  driver,
	})
}

// ListOrders returns the order view payload, newest first. The WebSocket
// pushes the same shape; this endpoint covers the initial page load and
// clients without a socket.
func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.Store.ListOrders(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query orders"})
		return
	}

	c.JSON(http.StatusOK, view.ReduceOrders(orders))
}
