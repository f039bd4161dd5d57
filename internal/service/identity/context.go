package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/Majedzeyad/cancare-api/internal/model"
)

// Caller is the authenticated identity a request acts as. Every role-scoped
// read resolves its owner from the caller when no explicit owner is given;
// an absent caller degrades the read to its safe default, it never raises.
type Caller struct {
	ID   uuid.UUID
	Name string
	Role model.Role
}

type callerKey struct{}

// WithCaller returns a context carrying the caller identity.
func WithCaller(ctx context.Context, caller Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, caller)
}

// CallerFrom extracts the caller identity, reporting whether one is present.
func CallerFrom(ctx context.Context) (Caller, bool) {
	caller, ok := ctx.Value(callerKey{}).(Caller)
	if !ok || caller.ID == uuid.Nil {
		return Caller{}, false
	}
	return caller, true
}

// Owner resolves the owner id for a scoped read: the explicit id when given,
// otherwise the caller's. The second return is false when neither exists.
func Owner(ctx context.Context, explicit uuid.UUID) (uuid.UUID, bool) {
	if explicit != uuid.Nil {
		return explicit, true
	}
	caller, ok := CallerFrom(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return caller.ID, true
}
