package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/pkg/response"
)

// MustGetUserID extracts the authenticated user id from the Gin context.
// When the JWT middleware did not inject one it writes a 401 response and
// returns false; the caller should return immediately.
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}
