package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"authcore/internal/domain"
	"authcore/internal/pkg/response"
)

// UserLister — the directory listing the admin panel consumes
type UserLister interface {
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type Handler struct {
	users UserLister
}

func NewHandler(users UserLister) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes attaches admin endpoints; the group is expected to be
// wrapped in RequireAdmin.
func (h *Handler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/users", h.ListUsers)
}

// ListUsers returns a page of directory entries.
// @Summary		List users
// @Tags		Admin
// @Security	BearerAuth
// @Success		200	{object}		map[string]interface{}
// @Router		/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	users, err := h.users.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "LIST_FAILED", "Failed to list users")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"users": users,
	})
}
