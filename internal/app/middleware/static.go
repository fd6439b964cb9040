package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Static serves compiled assets from dir under the given URL prefix. In
// production it sits in the chain immediately after the security middleware
// so asset responses still carry the hardening headers.
func Static(prefix, dir string) gin.HandlerFunc {
	fs := http.StripPrefix(prefix, http.FileServer(http.Dir(dir)))

	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, prefix) {
			fs.ServeHTTP(c.Writer, c.Request)
			c.Abort()
			return
		}
		c.Next()
	}
}
