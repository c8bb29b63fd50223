package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopgate/internal/httpx"
	"shopgate/internal/tenant"
)

// TenantCORS admits cross-origin requests through the tenant gate. Denied
// origins get a 403 before any handler runs; admitted origins are echoed
// back so credentialed requests work.
func TenantCORS(gate *tenant.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		if !gate.Allow(c.Request.Context(), origin) {
			httpx.FailErr(c, httpx.ErrForbidden("origin not allowed"))
			c.Abort()
			return
		}

		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Origin")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
