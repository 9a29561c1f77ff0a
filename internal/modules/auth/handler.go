package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"authcore/internal/middleware"
	"authcore/internal/pkg/response"
	"authcore/internal/pkg/validator"
	"authcore/internal/session"
)

// Handler manages all HTTP interactions for authentication
type Handler struct {
	service        *Service
	cookieSecure   bool
	cookieSameSite string
	cookiePath     string
	accessMaxAge   int
	refreshMaxAge  int
}

// NewHandler creates a new auth handler with injected service. TTLs drive
// the cookie max-age attributes so carriers and tokens expire together.
func NewHandler(service *Service, cookieSecure bool, cookieSameSite, cookiePath string, accessTTL, refreshTTL time.Duration) *Handler {
	return &Handler{
		service:        service,
		cookieSecure:   cookieSecure,
		cookieSameSite: cookieSameSite,
		cookiePath:     cookiePath,
		accessMaxAge:   int(accessTTL.Seconds()),
		refreshMaxAge:  int(refreshTTL.Seconds()),
	}
}

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/social", h.SocialLogin)
		authGroup.POST("/refresh", h.Refresh)
		authGroup.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(protected *gin.RouterGroup) {
	userGroup := protected.Group("/users")
	{
		userGroup.GET("/me", h.GetMe)
	}
}

// Register creates a new account and starts a session.
// @Summary		Register
// @Description	Creates a new account and issues an access/refresh pair.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	RegisterRequest	true	"payload"
// @Success		201	{object}		map[string]interface{}
// @Router		/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if violations := validator.Validate(req); violations != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", violations)
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailAlreadyExists):
			response.Error(c, http.StatusConflict, "EMAIL_EXISTS", "This email is already registered")
		case errors.Is(err, session.ErrStoreUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "Session store temporarily unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "REGISTRATION_FAILED", "Failed to register")
		}
		return
	}

	h.setAuthCookies(c, result.Tokens)
	response.Success(c, http.StatusCreated, loginPayload(result))
}

// Login authenticates by email and password and starts a session.
// @Summary		Login
// @Description	Issues an access/refresh pair; both are also set as cookies.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	LoginRequest	true	"payload"
// @Success		200	{object}		map[string]interface{}
// @Router		/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Email or password is incorrect")
		case errors.Is(err, session.ErrStoreUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "Session store temporarily unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		}
		return
	}

	h.setAuthCookies(c, result.Tokens)
	response.Success(c, http.StatusOK, loginPayload(result))
}

// SocialLogin signs in with a provider-verified profile.
// @Summary		Social login
// @Description	Finds or creates the account for a provider-verified profile and starts a session.
// @Tags		Auth
// @Accept		json
// @Produce		json
// @Param		request	body	SocialLoginRequest	true	"payload"
// @Success		200	{object}		map[string]interface{}
// @Router		/auth/social [post]
func (h *Handler) SocialLogin(c *gin.Context) {
	var req SocialLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	result, err := h.service.SocialLogin(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, session.ErrStoreUnavailable) {
			response.Error(c, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "Session store temporarily unavailable")
			return
		}
		response.Error(c, http.StatusInternalServerError, "LOGIN_FAILED", "Failed to login")
		return
	}

	h.setAuthCookies(c, result.Tokens)
	response.Success(c, http.StatusOK, loginPayload(result))
}

// Refresh rotates the refresh token and re-issues both cookies.
// @Summary		Refresh tokens
// @Description	Exchanges the current refresh token for a fresh access/refresh pair. A reused token revokes the whole session.
// @Tags		Auth
// @Produce		json
// @Success		200	{object}		map[string]interface{}
// @Router		/auth/refresh [post]
func (h *Handler) Refresh(c *gin.Context) {
	presented := h.presentedRefreshToken(c)
	if presented == "" {
		response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is missing")
		return
	}

	pair, err := h.service.Refresh(c.Request.Context(), presented)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrInvalidRefreshToken):
			response.Error(c, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "Refresh token is invalid or expired")
		case errors.Is(err, session.ErrRefreshTokenReused):
			// distinct status: the client must re-login, not retry the refresh
			h.clearAuthCookies(c)
			response.Error(c, http.StatusForbidden, "REFRESH_TOKEN_REUSED", "Refresh token reuse detected, please log in again")
		case errors.Is(err, session.ErrStoreUnavailable):
			response.Error(c, http.StatusServiceUnavailable, "SESSION_STORE_UNAVAILABLE", "Session store temporarily unavailable")
		default:
			response.Error(c, http.StatusInternalServerError, "REFRESH_FAILED", "Failed to refresh session")
		}
		return
	}

	h.setAuthCookies(c, pair)
	response.Success(c, http.StatusOK, gin.H{
		"tokens": gin.H{
			"access_token": pair.AccessToken,
		},
	})
}

// Logout clears the credential cookies. No server-side state changes: theft
// detection is the only path that revokes the stored session.
// @Summary		Logout
// @Description	Clears both token cookies.
// @Tags		Auth
// @Success		204	"No Content"
// @Router		/auth/logout [post]
func (h *Handler) Logout(c *gin.Context) {
	h.clearAuthCookies(c)
	c.Status(http.StatusNoContent)
}

// GetMe returns the profile of the authenticated caller.
// @Summary		Current user
// @Tags		Auth
// @Security	BearerAuth
// @Success		200	{object}		map[string]interface{}
// @Router		/users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userIDAny, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	userID := userIDAny.(int64)

	user, err := h.service.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "User not found")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user": UserPublic{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  string(user.Role),
		},
	})
}

// presentedRefreshToken prefers the cookie carrier and falls back to the
// request body for non-cookie clients.
func (h *Handler) presentedRefreshToken(c *gin.Context) string {
	if v, err := c.Cookie(middleware.RefreshCookieName); err == nil && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		return strings.TrimSpace(req.RefreshToken)
	}
	return ""
}

func (h *Handler) setAuthCookies(c *gin.Context, pair *session.TokenPair) {
	c.SetSameSite(parseSameSite(h.cookieSameSite))
	c.SetCookie(middleware.AccessCookieName, pair.AccessToken, h.accessMaxAge, h.cookiePath, "", h.cookieSecure, true)
	c.SetCookie(middleware.RefreshCookieName, pair.RefreshToken, h.refreshMaxAge, h.cookiePath, "", h.cookieSecure, true)
}

func (h *Handler) clearAuthCookies(c *gin.Context) {
	c.SetSameSite(parseSameSite(h.cookieSameSite))
	c.SetCookie(middleware.AccessCookieName, "", -1, h.cookiePath, "", h.cookieSecure, true)
	c.SetCookie(middleware.RefreshCookieName, "", -1, h.cookiePath, "", h.cookieSecure, true)
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteStrictMode
	}
}

func loginPayload(result *LoginResult) gin.H {
	return gin.H{
		"user": UserPublic{
			ID:    result.User.ID,
			Email: result.User.Email,
			Name:  result.User.Name,
			Role:  string(result.User.Role),
		},
		"tokens": gin.H{
			"access_token": result.Tokens.AccessToken,
		},
	}
}
