package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Kosench/go-link-shortener/internal/auth"
)

const (
	AuthCookieName = "users_access_token"

	requesterKey = "requester"
)

// OptionalAuth разрешает личность вызывающего из куки или заголовка
// Authorization. Отсутствующий, битый или истекший токен не ошибка -
// запрос продолжается как анонимный.
func OptionalAuth(users UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFromRequest(c)
		if token != "" {
			requester, err := users.RequesterFromToken(c.Request.Context(), token)
			if err == nil {
				c.Set(requesterKey, requester)
			}
		}
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(AuthCookieName); err == nil && cookie != "" {
		return cookie
	}

	header := c.GetHeader("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}

// RequesterFrom возвращает личность вызывающего или nil для анонима.
func RequesterFrom(c *gin.Context) *auth.Requester {
	value, exists := c.Get(requesterKey)
	if !exists {
		return nil
	}
	requester, _ := value.(*auth.Requester)
	return requester
}
