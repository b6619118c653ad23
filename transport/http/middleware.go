package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridmesh/station/service"
)

// RequireAuth creates middleware guarding views that require authentication:
// the session must hold an unexpired token and a provider must currently be
// injected. Otherwise the sessions are torn down and the client is sent back
// to the landing view.
func RequireAuth(coordinator *service.Coordinator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !coordinator.Authorized(c.Request.Context()) {
			coordinator.ForceLogout(c.Request.Context())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":    "authentication required",
				"redirect": "/",
			})
			return
		}

		c.Next()
	}
}
