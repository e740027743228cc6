package middleware

import (
	"errors"
	"net/http"
	"strings"

	"qissa-server/internal/auth"
	"qissa-server/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "token"
	UserIDKey         = "user_id"
)

// SessionAuth resolves the authenticated user id from the session cookie,
// falling back to a Bearer header for non-browser clients.
func SessionAuth(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := tokenFromRequest(c)
		if tokenStr == "" {
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"))
			c.Abort()
			return
		}

		userID, err := issuer.Verify(tokenStr)
		if err != nil {
			msg := "Invalid session token"
			if errors.Is(err, auth.ErrTokenExpired) {
				msg = "Session expired, please log in again"
			}
			utils.RespondError(c, utils.NewAppError(http.StatusUnauthorized, "UNAUTHORIZED", msg))
			c.Abort()
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
