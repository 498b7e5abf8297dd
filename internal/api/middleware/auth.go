package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/LadaVilada/kido-sub000/pkg/jwt"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
	"github.com/LadaVilada/kido-sub000/pkg/response"
)

// JWTAuth validates the Authorization: Bearer <token> header and injects
// the user id into the context. Revoked tokens are rejected through the
// Redis blacklist; without Redis (or on Redis errors) the check degrades
// open, matching the logout path.
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "missing authorization header")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "token is invalid or expired")
			c.Abort()
			return
		}

		if claims.TokenType != jwt.TokenTypeAccess {
			response.Unauthorized(c, 10002, "token type not allowed here")
			c.Abort()
			return
		}

		if rdb != nil {
			blacklisted, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID)
			if err == nil && blacklisted {
				response.Unauthorized(c, 10002, "token has been revoked")
				c.Abort()
				return
			}
		}

		c.Set("user_id", claims.UserID)

		c.Next()
	}
}
