package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DevOnly sends every request back to "/" when the server runs in production.
func DevOnly(production bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if production {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		c.Next()
	}
}
