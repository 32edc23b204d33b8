// Package middleware carries the gin handlers that run before every
// authenticated route.
package middleware

import (
	"net/http"
	"strings"

	"chatline/tools/security"

	"github.com/gin-gonic/gin"
)

// UserIDKey is where Auth leaves the verified user id in the gin context.
const UserIDKey = "auth_user_id"

// Auth verifies the Bearer token and aborts with 401 when it is missing or
// invalid.
func Auth(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "missing token"})
			return
		}
		userID, err := security.Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"msg": "invalid token"})
			return
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	// websocket handshakes and EventSource cannot set headers
	return c.Query("token")
}

// UserID reads the id Auth stored; empty when the route skipped Auth.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
