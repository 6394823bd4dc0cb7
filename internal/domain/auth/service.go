package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	cryptoutil "workforce/internal/platform/crypto"
)

const mfaIssuer = "Workforce"

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
	crypto *cryptoutil.Service
}

func NewService(store StoreAPI, secret string, ttl time.Duration, crypto *cryptoutil.Service) *Service {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Service{store: store, secret: secret, ttl: ttl, crypto: crypto}
}

func (s *Service) Secret() string {
	return s.secret
}

func (s *Service) Login(ctx context.Context, email, password, mfaCode string) (LoginResult, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	if user.MFAEnabled {
		if strings.TrimSpace(mfaCode) == "" {
			return LoginResult{}, ErrMFARequired
		}
		secret, err := s.crypto.DecryptString(user.MFASecretEn)
		if err != nil || secret == "" || !totp.Validate(mfaCode, secret) {
			return LoginResult{}, ErrMFAInvalid
		}
	}

	token, expires, err := s.issue(ctx, user.ID, user.Email, user.RoleName)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      LoginUser{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.RoleName},
	}, nil
}

func (s *Service) issue(ctx context.Context, userID, email, role string) (string, time.Time, error) {
	sessionID, err := NewSessionID()
	if err != nil {
		return "", time.Time{}, err
	}
	expires := time.Now().Add(s.ttl)
	if err := s.store.CreateSession(ctx, userID, HashToken(sessionID), expires); err != nil {
		return "", time.Time{}, fmt.Errorf("create session: %w", err)
	}
	token, err := GenerateToken(s.secret, Claims{UserID: userID, Email: email, RoleName: role, SessionID: sessionID}, s.ttl)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Refresh rotates the session behind a still-valid token and reissues it
// with the caller's current role.
func (s *Service) Refresh(ctx context.Context, tokenString string) (LoginResult, error) {
	claims, err := ParseToken(s.secret, tokenString)
	if err != nil {
		return LoginResult{}, ErrSessionExpired
	}
	valid, err := s.store.SessionValid(ctx, claims.UserID, HashToken(claims.SessionID))
	if err != nil {
		return LoginResult{}, err
	}
	if !valid {
		return LoginResult{}, ErrSessionExpired
	}
	user, err := s.store.FindActiveUserByID(ctx, claims.UserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return LoginResult{}, ErrSessionExpired
	}
	if err != nil {
		return LoginResult{}, err
	}

	newSessionID, err := NewSessionID()
	if err != nil {
		return LoginResult{}, err
	}
	expires := time.Now().Add(s.ttl)
	if err := s.store.RotateSession(ctx, claims.UserID, HashToken(claims.SessionID), HashToken(newSessionID), expires); err != nil {
		return LoginResult{}, err
	}
	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Email: user.Email, RoleName: user.RoleName, SessionID: newSessionID}, s.ttl)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      LoginUser{ID: user.ID, Email: user.Email, FullName: user.FullName, Role: user.RoleName},
	}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID))
}

// SessionActive backs the auth middleware's revocation check.
func (s *Service) SessionActive(ctx context.Context, userID, sessionID string) (bool, error) {
	return s.store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) ChangePassword(ctx context.Context, user UserContext, current, next string) error {
	record, err := s.store.FindActiveUserByID(ctx, user.UserID)
	if err != nil {
		return err
	}
	if err := CheckPassword(record.Password, current); err != nil {
		return ErrInvalidCredentials
	}
	if err := ValidatePassword(next); err != nil {
		return err
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, user.UserID, hash); err != nil {
		return err
	}
	if err := s.store.RevokeAllSessions(ctx, user.UserID); err != nil {
		slog.Warn("revoke sessions after password change failed", "userId", user.UserID, "err", err)
	}
	return nil
}

// SetupMFA issues a fresh TOTP secret. An enabled secret is never replaced.
func (s *Service) SetupMFA(ctx context.Context, user UserContext) (MFASetup, error) {
	if !s.crypto.Configured() {
		return MFASetup{}, ErrMFAUnavailable
	}
	current, err := s.store.FindActiveUserByID(ctx, user.UserID)
	if err != nil {
		return MFASetup{}, err
	}
	if current.MFAEnabled {
		return MFASetup{}, ErrMFAAlreadyEnabled
	}
	account := user.Email
	if account == "" {
		account = user.UserID
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      mfaIssuer,
		AccountName: account,
		Period:      30,
		Digits:      otp.DigitsSix,
	})
	if err != nil {
		return MFASetup{}, err
	}
	encrypted, err := s.crypto.EncryptString(key.Secret())
	if err != nil {
		return MFASetup{}, err
	}
	if err := s.store.UpdateMFASecret(ctx, user.UserID, encrypted); err != nil {
		return MFASetup{}, err
	}
	return MFASetup{Secret: key.Secret(), OTPAuthURL: key.URL()}, nil
}

func (s *Service) EnableMFA(ctx context.Context, user UserContext, code string) error {
	return s.toggleMFA(ctx, user, code, true)
}

func (s *Service) DisableMFA(ctx context.Context, user UserContext, code string) error {
	return s.toggleMFA(ctx, user, code, false)
}

func (s *Service) toggleMFA(ctx context.Context, user UserContext, code string, enabled bool) error {
	if !s.crypto.Configured() {
		return ErrMFAUnavailable
	}
	secretEnc, err := s.store.GetMFASecret(ctx, user.UserID)
	if err != nil || len(secretEnc) == 0 {
		return ErrMFANotSetUp
	}
	secret, err := s.crypto.DecryptString(secretEnc)
	if err != nil {
		return ErrMFAInvalid
	}
	if !totp.Validate(code, secret) {
		return ErrMFAInvalid
	}
	return s.store.SetMFAEnabled(ctx, user.UserID, enabled)
}

func (s *Service) HasPermission(ctx context.Context, role, permission string) (bool, error) {
	return s.store.HasPermission(ctx, role, permission)
}

func (s *Service) RolePermissions(ctx context.Context) (map[string][]string, error) {
	grants, err := s.store.ListRolePermissions(ctx)
	if err != nil {
		return nil, err
	}
	for _, role := range Roles {
		if _, ok := grants[role]; !ok {
			grants[role] = []string{}
		}
	}
	return grants, nil
}

func (s *Service) SetRolePermissions(ctx context.Context, role string, perms []string) ([]string, error) {
	normalized, err := NormalizePermissions(role, perms)
	if err != nil {
		return nil, err
	}
	if err := s.store.ReplaceRolePermissions(ctx, role, normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}
