package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"maid-cafe-backend/internal/models"
)

// SecretHeader carries the shared secret on privileged requests.
const SecretHeader = "X-Cafe-Secret"

// RequireSecret gates a route group behind a static shared secret. An
// empty configured secret is a server misconfiguration, reported as 500
// so it is never mistaken for a caller auth failure.
func RequireSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.JSON(http.StatusInternalServerError, models.Fail("server secret is not configured", nil))
			c.Abort()
			return
		}

		provided := c.GetHeader(SecretHeader)
		if provided == "" {
			c.JSON(http.StatusUnauthorized, models.Fail("missing "+SecretHeader+" header", nil))
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, models.Fail("invalid secret", nil))
			c.Abort()
			return
		}

		c.Next()
	}
}
