package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetaRoundTrip(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))

	ctx := With(context.Background(), Meta{RequestID: "req-1", ClientIP: "203.0.113.5"})
	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "203.0.113.5", From(ctx).ClientIP)
}
