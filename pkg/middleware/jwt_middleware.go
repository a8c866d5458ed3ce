package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"travelmind/pkg/utils"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// OptionalJWTMiddleware authenticates a Bearer token when one is sent. A
// request without Authorization passes through untouched so the body userId
// keeps working. An invalid token is always rejected.
func OptionalJWTMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !issuer.Enabled() {
			c.Next()
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			utils.RespondErrorWithReason(c, http.StatusUnauthorized, "unauthorized", "Authorization header must be Bearer <token>", nil)
			c.Abort()
			return
		}

		claims, err := issuer.ValidateToken(strings.TrimSpace(tokenString))
		if err != nil {
			utils.RespondErrorWithReason(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		c.Next()
	}
}

// UserID returns the authenticated user, falling back to the id the client
// supplied.
func UserID(c *gin.Context, fallback string) string {
	if id := c.GetString(ContextUserID); id != "" {
		return id
	}
	return fallback
}
