package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"figurehub/internal/http-api/service"
)

// IdentityCookie is the HTTP-only cookie carrying the identity token.
const IdentityCookie = "auth_token"

const userIDKey = "userID"

// OptionalAuth populates userID in the gin context when a valid identity
// cookie is present, and passes through silently otherwise. The tap
// endpoint uses it: an anonymous tap is a valid outcome, not an error.
func OptionalAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, err := c.Cookie(IdentityCookie); err == nil && token != "" {
			if userID, err := tokens.VerifyIdentity(token); err == nil {
				c.Set(userIDKey, userID)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests without a valid identity cookie.
func RequireAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(IdentityCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}

		userID, err := tokens.VerifyIdentity(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by the auth middlewares.
func UserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}
