package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tablepos/internal/presentation/http/dto/response"
)

const (
	// IdempotencyKeyHeader carries the client's checkout key
	IdempotencyKeyHeader = "Idempotency-Key"

	checkoutKey = "checkout_key"
)

// Idempotency reads the Idempotency-Key header as a checkout key. A client
// that repeats a request with the same key gets the already committed sale
// back instead of a second one. Requests without the header get a fresh key.
func Idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(IdempotencyKeyHeader)
		if raw == "" {
			c.Set(checkoutKey, uuid.New())
			c.Next()
			return
		}

		key, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, IdempotencyKeyHeader+" must be a UUID")
			c.Abort()
			return
		}
		c.Header(IdempotencyKeyHeader, key.String())
		c.Set(checkoutKey, key)
		c.Next()
	}
}

// GetCheckoutKey returns the key set by Idempotency, or uuid.Nil.
func GetCheckoutKey(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(checkoutKey); ok {
		if key, ok := v.(uuid.UUID); ok {
			return key
		}
	}
	return uuid.Nil
}
