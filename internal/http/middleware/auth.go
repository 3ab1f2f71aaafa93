// README: Bearer-token auth middleware backed by the Supabase verifier.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"yourhelpa/internal/infra"
)

const (
	callerUIDKey   = "caller_uid"
	callerEmailKey = "caller_email"
	callerRoleKey  = "caller_role"
)

// Auth rejects requests without a valid "Authorization: Bearer <jwt>" header
// and stores the caller's uid, email and role on the context.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		raw = strings.TrimSpace(raw)
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(callerUIDKey, token.UID)
		c.Set(callerEmailKey, token.Email)
		c.Set(callerRoleKey, token.Role)
		c.Next()
	}
}

func CallerUID(c *gin.Context) string {
	return c.GetString(callerUIDKey)
}

func CallerEmail(c *gin.Context) string {
	return c.GetString(callerEmailKey)
}

func CallerRole(c *gin.Context) string {
	return c.GetString(callerRoleKey)
}
