package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"authcore/internal/domain"
	"authcore/internal/session"
)

const pgUniqueViolation = "23505"

// Service contains the business logic around the token lifecycle core:
// password and social authentication feed first issuance, refresh delegates
// to the rotation protocol.
type Service struct {
	users  UserRepositoryInterface
	tokens TokenLifecycle
}

type LoginResult struct {
	User   *domain.User
	Tokens *session.TokenPair
}

func NewService(users UserRepositoryInterface, tokens TokenLifecycle) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique index is the real arbiter under concurrent signups
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	return s.issueFor(ctx, user)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issueFor(ctx, user)
}

// SocialLogin finds or creates the identity for a provider-verified profile
// and re-enters the lifecycle at first issuance, exactly like a password
// login.
func (s *Service) SocialLogin(ctx context.Context, req SocialLoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = &domain.User{
			Email:    email,
			Name:     req.Name,
			Role:     domain.RoleUser,
			Provider: req.Provider,
		}
		if createErr := s.users.Create(ctx, user); createErr != nil {
			var pgErr *pgconn.PgError
			if errors.As(createErr, &pgErr) && pgErr.Code == pgUniqueViolation {
				// lost a signup race; the row exists now
				user, err = s.users.GetByEmail(ctx, email)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, createErr
			}
		}
	} else if err != nil {
		return nil, err
	}

	return s.issueFor(ctx, user)
}

// Refresh runs the rotation protocol. All outcome classification
// (invalid / reused / store fault) happens inside the rotator; this is a
// pass-through so the handler can map sentinel errors directly.
func (s *Service) Refresh(ctx context.Context, presented string) (*session.TokenPair, error) {
	pair, _, err := s.tokens.Rotate(ctx, presented)
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) GetCurrentUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) issueFor(ctx context.Context, user *domain.User) (*LoginResult, error) {
	pair, err := s.tokens.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return &LoginResult{User: user, Tokens: pair}, nil
}
