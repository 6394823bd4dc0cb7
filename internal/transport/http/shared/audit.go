package shared

import (
	"net/http"

	"workforce/internal/domain/audit"
	"workforce/internal/platform/logging"
	"workforce/internal/platform/requestctx"
)

// Audit records a mutation for the request's caller. Failures are logged and
// never fail the request.
func Audit(r *http.Request, rec audit.Recorder, actorID, action, entityType, entityID string, before, after any) {
	if rec == nil {
		return
	}
	ctx := r.Context()
	meta := requestctx.From(ctx)
	if meta.ClientIP == "" {
		meta.ClientIP = RequestIP(r)
	}
	if err := rec.Record(ctx, actorID, action, entityType, entityID, meta.RequestID, meta.ClientIP, before, after); err != nil {
		logging.FromContext(ctx).Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}
