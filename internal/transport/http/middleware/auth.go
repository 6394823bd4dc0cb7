package middleware

import (
	"context"
	"net/http"
	"strings"

	"workforce/internal/domain/auth"
	"workforce/internal/platform/logging"
	"workforce/internal/transport/http/api"
)

// SessionChecker reports whether a token's session is still live.
type SessionChecker interface {
	SessionActive(ctx context.Context, userID, sessionID string) (bool, error)
}

// Auth attaches the caller when a valid bearer token is present. Tokens whose
// session was revoked are ignored. A nil checker skips the session lookup.
func Auth(secret string, sessions SessionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.ParseToken(secret, token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			if sessions != nil {
				active, err := sessions.SessionActive(r.Context(), claims.UserID, claims.SessionID)
				if err != nil {
					logging.FromContext(r.Context()).Warn("session check failed", "userId", claims.UserID, "err", err)
				}
				if err != nil || !active {
					next.ServeHTTP(w, r)
					return
				}
			}

			user := auth.UserContext{
				UserID:    claims.UserID,
				Email:     claims.Email,
				RoleName:  claims.RoleName,
				SessionID: claims.SessionID,
			}
			ctx := context.WithValue(r.Context(), ctxKeyUser, user)
			ctx = logging.WithContext(ctx, logging.FromContext(ctx).With("userId", user.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// RequireAuth rejects requests without an authenticated caller.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetUser(r.Context()); !ok {
			api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", GetRequestID(r.Context()))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func GetUser(ctx context.Context) (auth.UserContext, bool) {
	user, ok := ctx.Value(ctxKeyUser).(auth.UserContext)
	return user, ok
}

// WithUser is used by tests and internal callers to act as a user.
func WithUser(ctx context.Context, user auth.UserContext) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
