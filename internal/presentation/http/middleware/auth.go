package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/domain/entity"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
	"github.com/sangkips/tablepos/pkg/utils"
)

const cashierKey = "cashier"

// AuthMiddleware creates a JWT authentication middleware
func AuthMiddleware(jwtManager *utils.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := jwtManager.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(cashierKey, entity.Cashier{ID: claims.CashierID, Name: claims.Name})
		c.Next()
	}
}

// GetCashier returns the authenticated cashier, if any.
func GetCashier(c *gin.Context) (entity.Cashier, bool) {
	v, exists := c.Get(cashierKey)
	if !exists {
		return entity.Cashier{}, false
	}
	cashier, ok := v.(entity.Cashier)
	return cashier, ok && cashier.ID != uuid.Nil
}
