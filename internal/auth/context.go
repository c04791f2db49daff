package auth

import (
	"context"
)

type ctxKey string

const identityKey ctxKey = "identity"

// Identity is the authenticated user attached to a request context by
// SessionAuth.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

func FromContext(ctx context.Context) Identity {
	if v, ok := ctx.Value(identityKey).(Identity); ok {
		return v
	}
	return Identity{}
}

func UserID(ctx context.Context) string {
	return FromContext(ctx).UserID
}
