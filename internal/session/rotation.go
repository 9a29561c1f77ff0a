package session

import (
	"context"
	"errors"

	"authcore/internal/token"
)

var (
	// ErrInvalidRefreshToken means signature, structure or expiry failure.
	// The store is never consulted for such tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// ErrRefreshTokenReused means a cryptographically valid refresh token
	// was presented after being superseded by a rotation. Treated as theft:
	// the whole session slot is cleared as a side effect.
	ErrRefreshTokenReused = errors.New("refresh token reused")
)

// TokenPair is an access/refresh pair returned on issuance and rotation.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Rotator implements refresh token rotation with reuse detection. Rotation
// bounds the blast radius of a leaked refresh token to a single use: once a
// token has been rotated away, presenting that exact string again is proof
// of a stale or duplicated credential and terminates the session.
type Rotator struct {
	codec *token.Codec
	store Store
}

func NewRotator(codec *token.Codec, store Store) *Rotator {
	return &Rotator{codec: codec, store: store}
}

// Issue signs a fresh pair and unconditionally records the refresh token as
// the user's current one. Entry point for login and social auth.
func (r *Rotator) Issue(ctx context.Context, userID int64, email string) (*TokenPair, error) {
	access, err := r.codec.SignAccess(userID, email)
	if err != nil {
		return nil, err
	}
	refresh, err := r.codec.SignRefresh(userID)
	if err != nil {
		return nil, err
	}
	if err := r.store.Put(ctx, userID, refresh); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Rotate exchanges a presented refresh token for a fresh pair.
//
// The presented token must pass signature and expiry checks and must equal
// the stored current token exactly. On a mismatch the protocol cannot tell a
// lost rotation race from an attacker replaying a captured token, so it
// clears the slot either way and the user must log in again. Store faults
// propagate as ErrStoreUnavailable and never count as a mismatch.
func (r *Rotator) Rotate(ctx context.Context, presented string) (*TokenPair, int64, error) {
	claims, err := r.codec.VerifyRefresh(presented)
	if err != nil {
		return nil, 0, ErrInvalidRefreshToken
	}
	userID := claims.UserID

	// rotated access tokens carry no email claim: the directory is not a
	// collaborator of the rotation path
	access, err := r.codec.SignAccess(userID, "")
	if err != nil {
		return nil, userID, err
	}
	refresh, err := r.codec.SignRefresh(userID)
	if err != nil {
		return nil, userID, err
	}

	swapped, err := r.store.Replace(ctx, userID, presented, refresh)
	if err != nil {
		return nil, userID, err
	}
	if !swapped {
		if err := r.store.Clear(ctx, userID); err != nil {
			return nil, userID, err
		}
		return nil, userID, ErrRefreshTokenReused
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, userID, nil
}
