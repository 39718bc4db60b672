package user

import (
	"errors"
	"time"
)

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;not null"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	Role         string     `json:"role"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" gorm:"column:last_login_at"`
	Permissions  []string   `json:"permissions,omitempty" gorm:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

const (
	RoleAdmin        = "admin"
	RoleBendahara    = "bendahara"
	RolePetugas      = "petugas"
	RoleDokter       = "dokter"
	RoleParamedis    = "paramedis"
	RoleNonParamedis = "non_paramedis"
)

type Permission struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Permission) TableName() string {
	return "permissions"
}

type UserPermission struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	UserID       int64     `json:"user_id"`
	PermissionID int64     `json:"permission_id"`
	GrantedBy    *int64    `json:"granted_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) IsActiveUser() bool {
	return u.IsActive
}

// DisplayName falls back to "Unknown" when the name was never filled in.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "Unknown"
	}
	return u.Name
}

var ErrNotFound = errors.New("user not found")
