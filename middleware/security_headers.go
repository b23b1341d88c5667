package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/tadweer/tadweer-site/config"
)

// SecurityHeadersMiddleware sets the response hardening headers served with
// every suggestions and health response. HSTS is only sent in production.
func SecurityHeadersMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	production := cfg.Environment == config.EnvProduction
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		// JSON only, nothing on these routes should ever be cached by a proxy
		h.Set("Cache-Control", "no-store")
		if production {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
