// Package requestid carries the per-request correlation id.
package requestid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the request and response header holding the id.
const Header = "X-Request-ID"

type ctxKey struct{}

func New() string {
	return uuid.NewString()
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the id stored by WithID, or "".
func FromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}
