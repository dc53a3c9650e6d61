package identity

import (
	"context"

	"github.com/ncontiero/dk-tube-sub000/internal/model"
)

type ctxKey string

const identityKey ctxKey = "dktube.identity"

// WithIdentity stores a verified identity in context.
func WithIdentity(ctx context.Context, id model.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext fetches the verified identity from context.
func FromContext(ctx context.Context) (model.Identity, bool) {
	id, ok := ctx.Value(identityKey).(model.Identity)
	if !ok || id.ExternalID == "" {
		return model.Identity{}, false
	}
	return id, true
}
