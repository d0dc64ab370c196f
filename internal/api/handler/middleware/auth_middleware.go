package middleware

import (
	"net/http"
	"strings"

	"flowcore"
	"flowcore/internal/api/handler/response"
	"flowcore/internal/api/models"
	"flowcore/pkg"

	"github.com/gin-gonic/gin"
)

func AuthMiddleware(cfg flowcore.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" && c.Query("token") != "" {
			// Browsers cannot set headers on websocket upgrades.
			authHeader = "Bearer " + c.Query("token")
		}
		if authHeader == "" && cfg.Mode == "dev" {
			// Anonymous dev sessions act as admin so the canvas can be used without logging in.
			c.Set("userID", uint(0))
			c.Set("userEmail", "dev@localhost")
			c.Set("userRole", string(models.RoleAdmin))
			c.Set("username", "dev")
			c.Next()
			return
		}
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Authorization header required"})
			return
		}

		// Bearer token format: "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid authorization header format"})
			return
		}

		claims, err := pkg.ValidateToken(parts[1], cfg.JWTConfig.Secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "Invalid or expired token"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)
		c.Set("username", claims.Email)
		c.Next()
	}
}

func RequireRole(roles ...models.AppRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("userRole")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.APIError{Message: "User role not found"})
			return
		}

		role, _ := userRole.(string)
		for _, allowedRole := range roles {
			if role == string(allowedRole) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.APIError{Message: "Insufficient permissions"})
	}
}
