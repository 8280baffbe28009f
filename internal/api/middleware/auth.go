package middleware

import (
	"net/http"
	"strings"

	"fleet-dispatch-api-server/internal/auth"
	"fleet-dispatch-api-server/internal/models"

	"github.com/gin-gonic/gin"
)

// Authenticate validates the JWT and puts the user's info into the request
// context. Only mounted in direct-auth mode; in session mode the upstream
// proxy owns authentication.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format"})
			return
		}

		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set("username", claims.Username)
		c.Set("user_role", claims.Role)
		c.Set("user_modules", claims.Modules)

		c.Next()
	}
}

// Authorize is a middleware factory checking the user's role against an
// allow list.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRoleInterface, exists := c.Get("user_role")
		if !exists {
			// Should not happen when Authenticate runs first.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role not found in context"})
			return
		}

		userRole, ok := userRoleInterface.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User role has an invalid type"})
			return
		}

		for _, role := range allowedRoles {
			if role == userRole {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
	}
}

// RequireModule gates a route on a per-module permission. Admins bypass the
// check by role.
func RequireModule(moduleID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_role") == models.RoleAdmin {
			c.Next()
			return
		}

		modulesInterface, exists := c.Get("user_modules")
		if exists {
			if modules, ok := modulesInterface.([]string); ok {
				for _, m := range modules {
					if m == moduleID {
						c.Next()
						return
					}
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this module"})
	}
}
