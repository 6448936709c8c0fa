package auth

import (
	"github.com/gin-gonic/gin"
)

const (
	ctxUserIDKey = "user_id"
	userIDHeader = "X-User-ID"
)

// GetUserID resolves the authenticated actor id set by the gateway. Auth
// itself lives upstream; this service only consumes the identity.
func GetUserID(c *gin.Context) string {
	if val, ok := c.Get(ctxUserIDKey); ok {
		if s, ok := val.(string); ok && s != "" {
			return s
		}
	}
	if v := c.GetHeader(userIDHeader); v != "" {
		return v
	}
	return "system"
}
