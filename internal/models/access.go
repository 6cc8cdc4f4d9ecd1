package models

import "time"

// User is an account. Status false means deactivated.
type User struct {
	Base
	Email          string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName       string `gorm:"size:255" json:"full_name"`
	HashedPassword string `gorm:"size:255;not null" json:"-"`
	Status         bool   `gorm:"not null;index" json:"status"`
	IsSuperuser    bool   `gorm:"not null;default:false" json:"is_superuser"`
	RoleID         *uint  `gorm:"index" json:"role_id,omitempty"`
	Role           *Role  `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

func (User) TableName() string { return "users" }

// Role groups permissions. The default role is named by configuration, not by a row flag.
type Role struct {
	Base
	Name        string       `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Description string       `gorm:"size:512" json:"description"`
	Status      bool         `gorm:"not null" json:"status"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

func (Role) TableName() string { return "roles" }

// Permission is a named capability identified by a stable code.
type Permission struct {
	Base
	Name        string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Code        string `gorm:"size:128;not null;uniqueIndex" json:"code"`
	Description string `gorm:"size:512" json:"description"`
	Status      bool   `gorm:"not null" json:"status"`
}

func (Permission) TableName() string { return "permissions" }

// PasswordResetToken is consumed exactly once. Valid means unused and unexpired.
type PasswordResetToken struct {
	Base
	Token     string    `gorm:"size:64;not null;uniqueIndex" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	IsUsed    bool      `gorm:"not null;default:false;index" json:"is_used"`
}

func (PasswordResetToken) TableName() string { return "password_reset_tokens" }

// IsValid reports whether the token can still be redeemed at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.IsUsed && t.ExpiresAt.After(now)
}
