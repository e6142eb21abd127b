package identity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/seacatering/pkg/rbac"
)

// Identity is the authenticated caller as asserted by the identity provider.
type Identity struct {
	Subject uuid.UUID
	Role    string
}

// IsZero reports whether the identity is anonymous.
func (i Identity) IsZero() bool {
	return i.Subject == uuid.Nil
}

type identityCtxKey struct{}

// WithIdentity stores id in ctx together with its role for rbac checks.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, identityCtxKey{}, id)
	return rbac.WithRole(ctx, id.Role)
}

// FromContext returns the identity stored by WithIdentity.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	return id, ok && !id.IsZero()
}

// Require returns the identity in ctx or ErrUnauthorized.
func Require(ctx context.Context) (Identity, error) {
	id, ok := FromContext(ctx)
	if !ok {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}

// LogAttr exposes the caller as a log attribute. It matches the logger
// package's ContextExtractor signature.
func LogAttr(ctx context.Context) (slog.Attr, bool) {
	id, ok := FromContext(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return slog.Group("caller",
		slog.String("id", id.Subject.String()),
		slog.String("role", id.Role),
	), true
}
