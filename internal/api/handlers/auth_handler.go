package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fleet-dispatch-api-server/internal/identity"
)

type AuthHandler struct {
	Provider identity.Provider
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates in direct mode. In session mode the provider rejects
// it with the "not configured" message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Introduce email y contraseña."})
		return
	}

	token, id, err := h.Provider.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": identity.TranslateLoginError(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":    token,
		"identity": id,
	})
}

// Me resolves the current operator, best-effort: a blank identity is a
// normal answer, not an error.
func (h *AuthHandler) Me(c *gin.Context) {
	id, err := h.Provider.Resolve(c.Request.Context(), c.Request)
	if err != nil {
		c.JSON(http.StatusOK, identity.Identity{Modules: []string{}})
		return
	}
	if id.Modules == nil {
		id.Modules = []string{}
	}
	c.JSON(http.StatusOK, id)
}

// Logout is stateless on this server: tokens just expire, sessions belong
// to the upstream. The endpoint exists so the dashboard has one thing to
// call in both modes.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
