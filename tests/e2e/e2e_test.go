package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authcore/internal/database"
	"authcore/internal/domain"
	"authcore/internal/middleware"
	"authcore/internal/modules/admin"
	"authcore/internal/modules/auth"
	"authcore/internal/repository"
	"authcore/internal/session"
	"authcore/internal/token"
)

type TestSuite struct {
	router   *gin.Engine
	userRepo *repository.UserRepository
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *TestSuite {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.SessionToken{}))

	codec := token.NewCodec("e2e-access-secret", "e2e-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	store := session.NewGormStore(db, 7*24*time.Hour)
	rotator := session.NewRotator(codec, store)
	resolver := session.NewResolver(codec)

	userRepo := repository.NewUserRepository(db)

	authService := auth.NewService(userRepo, rotator)
	authHandler := auth.NewHandler(authService, false, "Strict", "/", 15*time.Minute, 7*24*time.Hour)

	gate := admin.NewGate(resolver, userRepo)
	adminHandler := admin.NewHandler(userRepo)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")

	authHandler.RegisterPublicRoutes(v1)

	protected := v1.Group("/")
	protected.Use(middleware.RequireAuth(resolver))
	authHandler.RegisterProtectedRoutes(protected)

	adminGroup := v1.Group("/admin")
	adminGroup.Use(admin.RequireAdmin(gate))
	adminHandler.RegisterRoutes(adminGroup)

	return &TestSuite{router: r, userRepo: userRepo}
}

type request struct {
	method  string
	path    string
	body    interface{}
	bearer  string
	cookies []*http.Cookie
}

func (s *TestSuite) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(req.body))
	}

	httpReq := httptest.NewRequest(req.method, req.path, &buf)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.bearer)
	}
	for _, c := range req.cookies {
		httpReq.AddCookie(c)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httpReq)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func accessTokenFromBody(t *testing.T, resp TestResponse) string {
	t.Helper()
	tokens, ok := resp.Data["tokens"].(map[string]interface{})
	require.True(t, ok, "response must carry tokens")
	access, ok := tokens["access_token"].(string)
	require.True(t, ok)
	return access
}

func TestRegisterLoginAndMe(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := parseResponse(t, w)
	access := accessTokenFromBody(t, resp)

	accessCookie := cookieByName(w, middleware.AccessCookieName)
	refreshCookie := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, accessCookie)
	require.NotNil(t, refreshCookie)
	assert.True(t, accessCookie.HttpOnly)
	assert.True(t, refreshCookie.HttpOnly)
	assert.Equal(t, "/", refreshCookie.Path)
	assert.Equal(t, 7*24*3600, refreshCookie.MaxAge)

	// bearer access token authorizes protected reads
	w = s.do(t, request{method: "GET", path: "/api/v1/users/me", bearer: access})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")

	// anonymous caller is rejected
	w = s.do(t, request{method: "GET", path: "/api/v1/users/me"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// duplicate registration conflicts
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "password123",
	}})
	assert.Equal(t, http.StatusConflict, w.Code)

	// login with wrong password fails
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/login", body: gin.H{
		"email":    "alice@example.com",
		"password": "wrong-password",
	}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRotationReuseLockout(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh1 := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh1)

	// first rotation succeeds
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh1}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refresh2 := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh2)
	assert.NotEqual(t, refresh1.Value, refresh2.Value)

	// second rotation with the new token succeeds
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh2}})
	require.Equal(t, http.StatusOK, w.Code)
	refresh3 := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh3)

	// replaying the first token is reuse: distinct status, not a plain 401
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh1}})
	require.Equal(t, http.StatusForbidden, w.Code)
	resp := parseResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "REFRESH_TOKEN_REUSED", resp.Error.Code)

	// reuse cleared the slot: even the newest token is dead now
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh3}})
	require.Equal(t, http.StatusForbidden, w.Code)

	// a fresh login re-enters at first issuance and recovers the account
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/login", body: gin.H{
		"email":    "bob@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusOK, w.Code)
	refresh4 := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh4)

	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh4}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshWithGarbageToken(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{
		{Name: middleware.RefreshCookieName, Value: "not-a-jwt"},
	}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	resp := parseResponse(t, w)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_REFRESH_TOKEN", resp.Error.Code)
}

func TestRefreshViaBodyForNonCookieClients(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Carol",
		"email":    "carol@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh)

	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", body: gin.H{
		"refresh_token": refresh.Value,
	}})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestSocialLoginFirstIssuance(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/social", body: gin.H{
		"provider": "google",
		"email":    "dave@example.com",
		"name":     "Dave",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	refresh := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh)

	// the issued refresh token rotates like any other
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh}})
	assert.Equal(t, http.StatusOK, w.Code)

	// repeat social login reuses the identity instead of duplicating it
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/social", body: gin.H{
		"provider": "google",
		"email":    "dave@example.com",
	}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogoutClearsCookiesOnly(t *testing.T) {
	s := setupTestSuite(t)

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Eve",
		"email":    "eve@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	refresh := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, refresh)

	w = s.do(t, request{method: "POST", path: "/api/v1/auth/logout"})
	require.Equal(t, http.StatusNoContent, w.Code)
	cleared := cookieByName(w, middleware.RefreshCookieName)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)

	// logout does not revoke server-side: the old refresh token still rotates
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/refresh", cookies: []*http.Cookie{refresh}})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminGate(t *testing.T) {
	s := setupTestSuite(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-password1"), bcrypt.MinCost)
	require.NoError(t, err)
	adminUser := &domain.User{
		Email:        "root@example.com",
		PasswordHash: string(hash),
		Name:         "Root",
		Role:         domain.RoleAdmin,
	}
	require.NoError(t, s.userRepo.Create(context.Background(), adminUser))

	w := s.do(t, request{method: "POST", path: "/api/v1/auth/login", body: gin.H{
		"email":    "root@example.com",
		"password": "admin-password1",
	}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	adminAccess := accessTokenFromBody(t, parseResponse(t, w))

	w = s.do(t, request{method: "GET", path: "/api/v1/admin/users", bearer: adminAccess})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "root@example.com")

	// a plain user is denied
	w = s.do(t, request{method: "POST", path: "/api/v1/auth/register", body: gin.H{
		"name":     "Frank",
		"email":    "frank@example.com",
		"password": "password123",
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	userAccess := accessTokenFromBody(t, parseResponse(t, w))

	w = s.do(t, request{method: "GET", path: "/api/v1/admin/users", bearer: userAccess})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// anonymous is 401, not 403
	w = s.do(t, request{method: "GET", path: "/api/v1/admin/users"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
