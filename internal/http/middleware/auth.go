package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"umrahtransfer/internal/services"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser is implemented by services.AuthService.
type TokenParser interface {
	ParseToken(raw string) (services.Claims, error)
}

// Auth requires a valid bearer token and stores the caller's id and role
// on the context. Browsers cannot set headers on WebSocket upgrades, so a
// token query parameter is accepted for those requests only.
func Auth(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearer(c.GetHeader("Authorization"))
		if raw == "" && strings.EqualFold(c.GetHeader("Upgrade"), "websocket") {
			raw = c.Query("token")
		}
		if raw == "" {
			abortAuth(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := parser.ParseToken(raw)
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(userRoleKey, claims.Role)
		c.Next()
	}
}

func bearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func abortAuth(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":      msg,
		"code":       "unauthorized",
		"request_id": GetRequestID(c),
		"message":    msg,
	})
}

func UserID(c *gin.Context) int64 {
	return c.GetInt64(userIDKey)
}

func UserRole(c *gin.Context) string {
	return c.GetString(userRoleKey)
}
