package middleware

import (
	"net/http"
	"strings"

	"hospital-operations-backend/internal/models"
	"hospital-operations-backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	ContextStaffID = "staffID"
	ContextRole    = "role"
)

// AuthMiddleware validates the bearer token and injects the staff identity
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid authorization format. Use: Bearer <token>")
			c.Abort()
			return
		}

		claims, err := utils.ValidateAccessToken(parts[1])
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		role := models.Role(claims.Role)
		if !role.Valid() {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Unknown role in token")
			c.Abort()
			return
		}

		c.Set(ContextStaffID, claims.StaffID)
		c.Set(ContextRole, role)

		c.Next()
	}
}

// RequireRole rejects callers whose role is not listed
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(ContextRole)
		if !exists {
			utils.ErrorResponse(c, http.StatusUnauthorized, "Authentication required")
			c.Abort()
			return
		}

		role, _ := value.(models.Role)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient role for this operation")
		c.Abort()
	}
}

// RequireAdmin checks if the authenticated staff member has the admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
