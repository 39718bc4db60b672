package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// User is the authenticated identity carried through request contexts.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

const (
	PermAdmin            = "admin"
	PermValidasiTindakan = "validasi_tindakan"
	PermInputTindakan    = "input_tindakan"
	PermViewTindakan     = "view_tindakan"
	PermKelolaLokasi     = "kelola_lokasi"
	PermKelolaToleransi  = "kelola_toleransi"
)

func (u *User) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

func (u *User) HasAnyPermission(permissions []string) bool {
	for _, userPerm := range u.Permissions {
		for _, requiredPerm := range permissions {
			if userPerm == requiredPerm {
				return true
			}
		}
	}
	return false
}

// IsBendahara reports whether the user can validate tindakan records.
func (u *User) IsBendahara() bool {
	return u.HasAnyPermission([]string{PermValidasiTindakan, PermAdmin})
}

func (u *User) IsAdmin() bool {
	return u.HasPermission(PermAdmin)
}

// DisplayName returns the user's name, falling back to "Unknown" when unset.
func (u *User) DisplayName() string {
	if u == nil || u.Name == "" {
		return "Unknown"
	}
	return u.Name
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

// TokenGenerator creates and validates tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, email string) (string, error)
	GenerateRefreshToken(userID, email string) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)

type userCtxKey struct{}

// ContextUserKey is the context key carrying the authenticated *User.
var ContextUserKey = userCtxKey{}

func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(ContextUserKey).(*User)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, user)
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
