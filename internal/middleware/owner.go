package middleware

import (
	"net/http" // HTTP status codes
	"strconv"  // Path parameter parsing

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// OwnerOnlyMiddleware lets a request through only when the user id in the
// given path parameter is the logged in user
func OwnerOnlyMiddleware(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		pathID, err := strconv.ParseUint(c.Param(param), 10, 64)
		if err != nil {
			c.HTML(http.StatusNotFound, "error.html", gin.H{
				"Title": "User not found", "User": nil, "Error": "", "Notice": "",
				"Message": "There is no user with that id.",
			})
			c.Abort()
			return
		}
		if uid, ok := userID.(uint); !ok || uint64(uid) != pathID {
			logrus.WithFields(logrus.Fields{
				"user_id": userID,
				"path_id": pathID,
				"path":    c.Request.URL.Path,
			}).Warn("Blocked access to another user's page")
			c.HTML(http.StatusForbidden, "error.html", gin.H{
				"Title": "Forbidden", "User": nil, "Error": "", "Notice": "",
				"Message": "You can only view your own account.",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
