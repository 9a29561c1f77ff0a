package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authcore/internal/middleware"
	"authcore/internal/pkg/response"
)

// RequireAdmin gates a route group behind the elevated check. Anonymous
// callers get 401; resolved but non-elevated identities get 403; directory
// faults surface as 503 so they are never mistaken for a denial.
func RequireAdmin(gate *Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := gate.VerifyElevated(c.Request.Context(), middleware.CredentialsFromRequest(c))
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, "DIRECTORY_UNAVAILABLE", "Could not verify access")
			c.Abort()
			return
		}
		if result.UserID == 0 {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}
		if !result.Granted {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			c.Abort()
			return
		}

		c.Set("user_id", result.UserID)
		c.Next()
	}
}
