package admin

import (
	"context"

	"authcore/internal/session"
)

// ElevatedLookup is the single directory read the gate needs.
type ElevatedLookup interface {
	IsElevated(ctx context.Context, userID int64) (bool, error)
}

// GateResult reports the outcome of an elevated-access check. UserID is set
// whenever an identity resolved, even when elevation was denied.
type GateResult struct {
	Granted bool
	UserID  int64
}

// Gate verifies elevated access: resolve an identity from the request
// carriers, then look the admin attribute up in the directory. There is no
// separate admin token class and no caching, so a revoked elevation takes
// effect on the very next check.
type Gate struct {
	resolver *session.Resolver
	users    ElevatedLookup
}

func NewGate(resolver *session.Resolver, users ElevatedLookup) *Gate {
	return &Gate{resolver: resolver, users: users}
}

func (g *Gate) VerifyElevated(ctx context.Context, creds session.Credentials) (GateResult, error) {
	userID, ok := g.resolver.Resolve(creds)
	if !ok {
		return GateResult{}, nil
	}

	elevated, err := g.users.IsElevated(ctx, userID)
	if err != nil {
		return GateResult{UserID: userID}, err
	}

	return GateResult{Granted: elevated, UserID: userID}, nil
}
