package middleware

import (
	"context"
	"net/http"

	"workforce/internal/platform/logging"
	"workforce/internal/transport/http/api"
)

// PermissionStore resolves role grants; auth.Service implements it against
// the role_permissions table.
type PermissionStore interface {
	HasPermission(ctx context.Context, role, permission string) (bool, error)
}

func RequirePermission(permission string, store PermissionStore) func(http.Handler) http.Handler {
	return RequireAnyPermission(store, permission)
}

// RequireAnyPermission lets the request through when the caller's role holds
// at least one of permissions.
func RequireAnyPermission(store PermissionStore, permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			reqID := GetRequestID(ctx)
			user, ok := GetUser(ctx)
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
				return
			}
			for _, permission := range permissions {
				allowed, err := store.HasPermission(ctx, user.RoleName, permission)
				if err != nil {
					logging.FromContext(ctx).Error("permission check failed", "role", user.RoleName, "permission", permission, "err", err)
					api.Fail(w, http.StatusInternalServerError, "permission_error", "permission check failed", reqID)
					return
				}
				if allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			logging.FromContext(ctx).Info("permission denied", "userId", user.UserID, "role", user.RoleName, "required", permissions)
			api.Fail(w, http.StatusForbidden, "forbidden", "insufficient permissions", reqID)
		})
	}
}
