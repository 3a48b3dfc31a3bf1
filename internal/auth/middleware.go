package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	identityKey = "identity"
	userUIDKey  = "user_uid"
)

// AuthMiddleware verifies the bearer token and stores the identity in the context
func AuthMiddleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		// Extract token from "Bearer <token>" format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  "unauthorized",
			})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			log.WithError(err).Debug("Token verification failed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
				"code":  "unauthorized",
			})
			return
		}

		c.Set(identityKey, identity)
		c.Set(userUIDKey, identity.UID)

		c.Next()
	}
}

// GetIdentity retrieves the verified identity from the context
func GetIdentity(c *gin.Context) (*Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return nil, false
	}

	identity, ok := v.(*Identity)
	return identity, ok
}

// GetUserUID retrieves the verified user UID from the context
func GetUserUID(c *gin.Context) (string, bool) {
	uid := c.GetString(userUIDKey)
	return uid, uid != ""
}
