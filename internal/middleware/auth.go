package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authcore/internal/pkg/response"
	"authcore/internal/session"
)

// Cookie names are part of the client contract; do not rename.
const (
	AccessCookieName  = "accessToken"
	RefreshCookieName = "refreshToken"
)

// CredentialsFromRequest collects the credential carriers a request may
// present: bearer header, access token cookie, refresh token cookie.
func CredentialsFromRequest(c *gin.Context) session.Credentials {
	var creds session.Credentials

	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		creds.Bearer = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(AccessCookieName); err == nil {
		creds.AccessCookie = v
	}
	if v, err := c.Cookie(RefreshCookieName); err == nil {
		creds.RefreshCookie = v
	}

	return creds
}

// RequireAuth resolves an identity from the request carriers and aborts with
// 401 for anonymous callers. Missing and invalid credentials are treated the
// same: no identity.
func RequireAuth(resolver *session.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := resolver.Resolve(CredentialsFromRequest(c))
		if !ok {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
