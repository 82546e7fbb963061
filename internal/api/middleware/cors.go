package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Headers the desktop UI sends or reads across origins.
var (
	corsRequestHeaders = []string{
		"Origin", "Accept", "Content-Type", "Content-Length",
		"Cache-Control", "If-None-Match", "X-Requested-With", "X-Trace-ID",
	}
	corsExposedHeaders = []string{"ETag", "X-Trace-ID", "Content-Disposition"}
)

// CORSConfig builds the gin-contrib/cors settings for the given UI origins.
// A "*" entry allows any origin; credentials are then disabled since
// browsers reject them alongside a wildcard.
func CORSConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:  corsRequestHeaders,
		ExposeHeaders: corsExposedHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

// CORS answers preflights and decorates responses for the desktop UI origins.
func CORS(origins []string) gin.HandlerFunc {
	return cors.New(CORSConfig(origins))
}
