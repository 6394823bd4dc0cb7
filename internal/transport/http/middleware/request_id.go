package middleware

import (
	"context"
	"net/http"
	"net/netip"

	"github.com/google/uuid"

	"workforce/internal/platform/logging"
	"workforce/internal/platform/requestctx"
	"workforce/internal/transport/http/shared"
)

const maxRequestIDLen = 128

// RequestID is RequestContext with no trusted proxies.
func RequestID(next http.Handler) http.Handler {
	return RequestContext(nil)(next)
}

// RequestContext keeps a caller-supplied X-Request-ID or assigns a UUID,
// records the client IP alongside it and attaches a request-scoped logger.
// Forwarding headers count only from peers in trusted.
func RequestContext(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" || len(reqID) > maxRequestIDLen {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)
			ctx := requestctx.With(r.Context(), requestctx.Meta{RequestID: reqID, ClientIP: shared.ClientIP(r, trusted)})
			ctx = logging.WithContext(ctx, logging.FromContext(ctx).With("req_id", reqID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}
