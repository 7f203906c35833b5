// internal/domain/user.go
package domain

import "time"

// UserRole defines the role of a user in the platform.
type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleSeeker     UserRole = "SEEKER"
	UserRoleAstrologer UserRole = "ASTROLOGER"
)

// User represents a platform user. Profile details live outside the session
// engine; only the fields the engine reads are modeled here.
type User struct {
	ID          int64     `db:"id" json:"id"`
	PhoneNumber string    `db:"phone_number" json:"phone_number"`
	Role        UserRole  `db:"role" json:"role"`
	DeviceToken *string   `db:"device_token" json:"-"` // Push notification target, nil when unregistered
	IsActive    bool      `db:"is_active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
