package middleware

import (
	"net/http"
	"strings"

	"github.com/annel0/marble/internal/auth"
	"github.com/gin-gonic/gin"
)

// ClientIDKey — ключ gin.Context с идентификатором клиента из токена
const ClientIDKey = "client_id"

// RequireToken проверяет JWT токен в заголовке Authorization.
// nil issuer отключает проверку.
func RequireToken(issuer *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if issuer == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Отсутствует токен авторизации")
			return
		}

		// Проверяем формат "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c, "Неверный формат токена")
			return
		}

		claims, err := issuer.Validate(parts[1])
		if err != nil {
			abortUnauthorized(c, "Недействительный токен")
			return
		}

		c.Set(ClientIDKey, claims.ClientID)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}
