package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserContext is the authenticated caller attached to a request.
type UserContext struct {
	UserID    string
	Email     string
	RoleName  string
	SessionID string
}

func (u UserContext) IsAdmin() bool {
	return u.RoleName == RoleAdmin
}

type Claims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email,omitempty"`
	RoleName  string `json:"role"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

type AuthUser struct {
	ID          string
	Email       string
	FullName    string
	RoleName    string
	Password    string
	MFAEnabled  bool
	MFASecretEn []byte
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      LoginUser `json:"user"`
}

type LoginUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type MFASetup struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}
