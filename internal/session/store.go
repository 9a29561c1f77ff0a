package session

import (
	"context"
	"errors"
)

// ErrStoreUnavailable marks infrastructure faults reading or writing the
// store. Implementations wrap backend errors with it so callers can tell an
// outage apart from a token mismatch — misreading an outage as theft would
// revoke a legitimate session.
var ErrStoreUnavailable = errors.New("session store unavailable")

// Store holds the single currently-valid refresh token per user. At most one
// entry exists per user at any instant; there is no token history.
//
// Put, Replace and Clear must be atomic with respect to concurrent calls for
// the same user: two rotations presenting the same stale token must not both
// succeed.
type Store interface {
	// Put unconditionally sets the current token for the user,
	// overwriting any prior value. Used on first issuance.
	Put(ctx context.Context, userID int64, token string) error

	// Get returns the current token; ok is false when no entry exists.
	Get(ctx context.Context, userID int64) (token string, ok bool, err error)

	// IsCurrent reports whether token equals the stored entry exactly.
	// A missing entry is non-current.
	IsCurrent(ctx context.Context, userID int64, token string) (bool, error)

	// Replace swaps presented for next only when presented is the current
	// token. It returns false when the entry is absent or holds a
	// different value.
	Replace(ctx context.Context, userID int64, presented, next string) (bool, error)

	// Clear removes the entry, invalidating every future rotation attempt
	// for the user until the next login.
	Clear(ctx context.Context, userID int64) error
}
