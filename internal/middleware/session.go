package middleware

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"multicurrency_wallet/internal/utils" // Session token helpers

	"github.com/gin-gonic/gin" // Gin web framework
)

// SessionMiddleware validates the session token and stores the user id in the context.
// Browsers send it as a cookie; API clients may use a Bearer header instead.
func SessionMiddleware(secret string, secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, _ := c.Cookie(utils.SessionCookie) // Cookie first
		if tokenStr == "" {
			if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				tokenStr = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}
		if tokenStr == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		claims, err := utils.ParseJWT(tokenStr, secret)
		if err != nil {
			// Drop the stale cookie so the login page does not loop
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(utils.SessionCookie, "", -1, "/", "", secureCookie, true)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Set("userID", claims.UserID) // Store userID in context
		c.Next()
	}
}
