package auth

import (
	"context"
	"time"
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	FindActiveUserByID(ctx context.Context, userID string) (AuthUser, error)
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID string) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	RevokeAllSessions(ctx context.Context, userID string) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
	RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error
	UpdateMFASecret(ctx context.Context, userID string, secretEnc []byte) error
	GetMFASecret(ctx context.Context, userID string) ([]byte, error)
	SetMFAEnabled(ctx context.Context, userID string, enabled bool) error
	UpdatePassword(ctx context.Context, userID, hash string) error
	HasPermission(ctx context.Context, role, permission string) (bool, error)
	ListRolePermissions(ctx context.Context) (map[string][]string, error)
	ReplaceRolePermissions(ctx context.Context, role string, perms []string) error
}
