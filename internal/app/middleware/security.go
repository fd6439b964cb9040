package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"app_backend/internal/config"
)

// Security applies the transport hardening toggles from the settings:
// HTTPS redirect (honoring X-Forwarded-Proto from the proxy), HSTS and
// content-type sniffing protection.
func Security(sec config.Security) gin.HandlerFunc {
	var hsts string
	if sec.HSTSSeconds > 0 {
		hsts = fmt.Sprintf("max-age=%d", sec.HSTSSeconds)
		if sec.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if sec.HSTSPreload {
			hsts += "; preload"
		}
	}

	return func(c *gin.Context) {
		if sec.SSLRedirect && !requestIsSecure(c.Request) {
			url := "https://" + c.Request.Host + c.Request.URL.RequestURI()
			c.Redirect(http.StatusMovedPermanently, url)
			c.Abort()
			return
		}
		if hsts != "" {
			c.Header("Strict-Transport-Security", hsts)
		}
		if sec.ContentTypeNosniff {
			c.Header("X-Content-Type-Options", "nosniff")
		}
		c.Next()
	}
}

// requestIsSecure reports whether the request arrived over HTTPS, either
// directly or behind a TLS-terminating proxy.
func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
