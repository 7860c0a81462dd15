package middleware

import (
	"strings"

	"tooltrack_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	// ActorIDKey is the gin context key every mutating handler reads.
	ActorIDKey = "actorID"

	// DefaultActorID attributes operations arriving without a token
	// (schedulers, internal callers, dev setups).
	DefaultActorID = "system"
)

// ActorAttribution resolves the acting identity from a bearer token and
// stores it in the request context. Authentication is enforced upstream;
// a missing or unparsable token falls back to the system actor rather
// than rejecting the request.
func ActorAttribution() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := DefaultActorID

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && strings.ToLower(parts[0]) == "bearer" {
				if claims, err := utils.ParseActorToken(parts[1]); err == nil && claims.ActorID != "" {
					actorID = claims.ActorID
					c.Set("actorRole", claims.Role)
				}
			}
		}

		c.Set(ActorIDKey, actorID)
		c.Next()
	}
}

// ActorID returns the attributed actor for the request.
func ActorID(c *gin.Context) string {
	if v, exists := c.Get(ActorIDKey); exists {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return DefaultActorID
}
