package domain

import "time"

// SessionToken is the single-slot refresh token record: one row per user,
// overwritten on every rotation.
//
// Security notes:
//   - A presented refresh token is accepted for rotation only if it equals
//     this row's Token exactly; no history of past tokens is kept.
//   - ExpiresAt only feeds the cleanup job. Token validity is decided by the
//     signed expiry claim, not by this column.
type SessionToken struct {
	UserID    int64     `json:"user_id" gorm:"primaryKey"`
	Token     string    `json:"-" gorm:"size:1024;not null"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SessionToken) TableName() string { return "session_tokens" }

func (t *SessionToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
