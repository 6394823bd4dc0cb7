// Package requestctx carries per-request metadata below the HTTP layer so
// audit writes and logs can reference it without importing transport code.
package requestctx

import "context"

type Meta struct {
	RequestID string
	ClientIP  string
}

type ctxKey struct{}

func With(ctx context.Context, meta Meta) context.Context {
	return context.WithValue(ctx, ctxKey{}, meta)
}

func From(ctx context.Context) Meta {
	meta, _ := ctx.Value(ctxKey{}).(Meta)
	return meta
}

func GetRequestID(ctx context.Context) string {
	return From(ctx).RequestID
}
