package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleLibrarian UserRole = "librarian"
)

// User is a staff account. Patrons are not users; they are identified only by
// their six digit library card number.
type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Username         string         `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash     string         `gorm:"size:255" json:"-"`
	Role             UserRole       `gorm:"size:20;default:'librarian'" json:"role"`
	TokenHash        string         `gorm:"index;size:64" json:"-"`
	TokenCreatedAt   *time.Time     `json:"-"`
	FailedLoginCount int            `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time     `json:"-"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}
