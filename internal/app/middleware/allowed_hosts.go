package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"app_backend/internal/api"
)

// AllowedHosts rejects requests whose Host header is not in the configured
// list. A "*" entry disables the check.
func AllowedHosts(hosts []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(hosts))
	wildcard := false
	for _, h := range hosts {
		if h == "*" {
			wildcard = true
		}
		allowed[h] = struct{}{}
	}

	return func(c *gin.Context) {
		if wildcard {
			c.Next()
			return
		}

		host := c.Request.Host
		// Host may carry a port
		if h, _, err := net.SplitHostPort(host); err == nil {
			host = h
		}
		if _, ok := allowed[host]; !ok {
			c.AbortWithStatusJSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid host header"})
			return
		}
		c.Next()
	}
}
