package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/tadweer/tadweer-site/config"
)

var (
	corsAllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}
	corsAllowHeaders = []string{"Content-Type", "Authorization"}
)

// CORSMiddleware lets the site widget call the API from the browser. With no
// configured origins, or with "*", every response carries a wildcard
// Access-Control-Allow-Origin, whether or not the request sent an Origin.
// An explicit origin list is enforced by gin-contrib/cors.
func CORSMiddleware(cfg *config.ServerConfig) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 || containsOrigin(cfg.AllowedOrigins, "*") {
		methods := strings.Join(corsAllowMethods, ", ")
		headers := strings.Join(corsAllowHeaders, ", ")

		return func(c *gin.Context) {
			c.Header("Access-Control-Allow-Origin", "*")
			c.Header("Access-Control-Allow-Methods", methods)
			c.Header("Access-Control-Allow-Headers", headers)
			c.Next()
		}
	}

	return cors.New(cors.Config{
		AllowOrigins:  cfg.AllowedOrigins,
		AllowMethods:  corsAllowMethods,
		AllowHeaders:  corsAllowHeaders,
		ExposeHeaders: []string{"X-Request-ID"},
		AllowWildcard: true,
		MaxAge:        12 * time.Hour,
	})
}

// containsOrigin checks if a string is present in the allowed origins slice
func containsOrigin(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
