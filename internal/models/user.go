package models

import (
	"time"

	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
	UserStatusBlocked  UserStatus = "blocked"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusInactive, UserStatusBlocked:
		return true
	}
	return false
}

// User represents a customer or an administrator of the store.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Username  string         `json:"username" gorm:"uniqueIndex;type:varchar(100)"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	Password  string         `json:"-" gorm:"type:varchar(255)"` // bcrypt hash
	Role      Role           `json:"role" gorm:"type:varchar(16);default:user"`
	Status    UserStatus     `json:"status" gorm:"type:varchar(16);default:active"`
	Wishlist  []string       `json:"wishlist" gorm:"type:text;serializer:json"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Owns reports whether the principal is the owner identified by userID.
func (p Principal) Owns(userID string) bool { return p.UserID != "" && p.UserID == userID }
