package middleware

import (
	"net/http"
	"strings"

	"Tycoon/internal/shared/security"
	"Tycoon/internal/shared/transport"

	"github.com/gin-gonic/gin"
)

const userIDKey = "user_id"

// Auth 校验 Authorization: Bearer <jwt>，通过后把 user id 放进 gin.Context。
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			transport.SetErrorReason(c.Request.Context(), "missing_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": transport.Unauthorized, "msg": "缺少 token"})
			return
		}
		_, claims, err := security.ParseToken(strings.TrimSpace(token))
		if err != nil {
			transport.SetErrorReason(c.Request.Context(), "invalid_token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": transport.Unauthorized, "msg": "token 无效"})
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

// UserID 返回 Auth 写入的 user id。
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
