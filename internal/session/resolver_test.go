package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/token"
)

func newTestResolver(t *testing.T) (*Resolver, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("access-secret-123", "refresh-secret-456", 15*time.Minute, 7*24*time.Hour)
	return NewResolver(codec), codec
}

func TestResolver_BearerWins(t *testing.T) {
	resolver, codec := newTestResolver(t)

	bearer, err := codec.SignAccess(42, "")
	require.NoError(t, err)

	userID, ok := resolver.Resolve(Credentials{
		Bearer:       bearer,
		AccessCookie: "definitely-not-a-token",
	})
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestResolver_FallsBackToAccessCookie(t *testing.T) {
	resolver, codec := newTestResolver(t)

	cookie, err := codec.SignAccess(7, "")
	require.NoError(t, err)

	userID, ok := resolver.Resolve(Credentials{AccessCookie: cookie})
	assert.True(t, ok)
	assert.Equal(t, int64(7), userID)
}

func TestResolver_ExpiredAccessFallsBackToRefresh(t *testing.T) {
	resolver, codec := newTestResolver(t)
	expiredCodec := token.NewCodec("access-secret-123", "refresh-secret-456", -time.Minute, 7*24*time.Hour)

	expiredAccess, err := expiredCodec.SignAccess(42, "")
	require.NoError(t, err)
	refresh, err := codec.SignRefresh(42)
	require.NoError(t, err)

	userID, ok := resolver.Resolve(Credentials{
		AccessCookie:  expiredAccess,
		RefreshCookie: refresh,
	})
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestResolver_RefreshCookieAlone(t *testing.T) {
	resolver, codec := newTestResolver(t)

	refresh, err := codec.SignRefresh(42)
	require.NoError(t, err)

	userID, ok := resolver.Resolve(Credentials{RefreshCookie: refresh})
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}

func TestResolver_NoCarriers(t *testing.T) {
	resolver, _ := newTestResolver(t)

	userID, ok := resolver.Resolve(Credentials{})
	assert.False(t, ok)
	assert.Zero(t, userID)
}

func TestResolver_AllInvalid(t *testing.T) {
	resolver, _ := newTestResolver(t)

	userID, ok := resolver.Resolve(Credentials{
		Bearer:        "junk",
		AccessCookie:  "junk",
		RefreshCookie: "junk",
	})
	assert.False(t, ok)
	assert.Zero(t, userID)
}

// Resolution is stateless: a refresh token already rotated away in the store
// still resolves an identity here. Only the rotation path detects reuse.
func TestResolver_IgnoresStoreState(t *testing.T) {
	resolver, codec := newTestResolver(t)

	refresh, err := codec.SignRefresh(42)
	require.NoError(t, err)

	userID, ok := resolver.Resolve(Credentials{RefreshCookie: refresh})
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)
}
