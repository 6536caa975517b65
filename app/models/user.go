package models

import (
	"time"

	"github.com/shashiranjanraj/storefront/pkg/auth"
)

// User is a registered account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialised
	Name      string    `gorm:"size:255;not null" json:"name"`
	Role      string    `gorm:"size:32;not null;default:customer" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether u holds the admin role.
func (u User) IsAdmin() bool { return u.Role == auth.RoleAdmin }
