package auth

import (
	"context"

	"authcore/internal/domain"
	"authcore/internal/session"
)

// UserRepositoryInterface — only the methods the auth service uses
type UserRepositoryInterface interface {
	Create(ctx context.Context, u *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenLifecycle is the slice of the rotation protocol the service needs:
// first issuance after authentication and rotation on refresh.
type TokenLifecycle interface {
	Issue(ctx context.Context, userID int64, email string) (*session.TokenPair, error)
	Rotate(ctx context.Context, presented string) (*session.TokenPair, int64, error)
}
