package session

import "authcore/internal/token"

// Credentials are the carriers an inbound request may present.
type Credentials struct {
	Bearer        string
	AccessCookie  string
	RefreshCookie string
}

// Resolver resolves an identity from request credentials for authorization
// purposes. Resolution is purely cryptographic — no store lookup — so a
// rotation-invalidated refresh token still resolves here; only the rotation
// path detects reuse.
type Resolver struct {
	codec *token.Codec
}

func NewResolver(codec *token.Codec) *Resolver {
	return &Resolver{codec: codec}
}

// Resolve checks carriers in precedence order, short-circuiting on the first
// that verifies: bearer header, then access cookie, then refresh cookie. The
// refresh fallback lets a client with an expired access token keep doing
// authorization-gated reads without an explicit refresh round-trip first.
// Anonymous callers get (0, false), not an error.
func (r *Resolver) Resolve(creds Credentials) (int64, bool) {
	if creds.Bearer != "" {
		if claims, err := r.codec.VerifyAccess(creds.Bearer); err == nil {
			return claims.UserID, true
		}
	}
	if creds.AccessCookie != "" {
		if claims, err := r.codec.VerifyAccess(creds.AccessCookie); err == nil {
			return claims.UserID, true
		}
	}
	if creds.RefreshCookie != "" {
		if claims, err := r.codec.VerifyRefresh(creds.RefreshCookie); err == nil {
			return claims.UserID, true
		}
	}
	return 0, false
}
