package domain

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is the identity directory record. The token lifecycle core never
// mutates it; it only reads the fields embedded as claims and the role
// checked by the admin gate.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" validate:"required,email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         UserRole  `json:"role" gorm:"default:user"`
	Provider     string    `json:"provider,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsElevated reports whether the user carries the admin attribute. Elevation
// is a directory attribute, not a token claim, so revoking it takes effect on
// the next check without any token invalidation.
func (u *User) IsElevated() bool {
	return u.Role == RoleAdmin
}
