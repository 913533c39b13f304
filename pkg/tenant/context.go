package tenant

import (
	"context"
	"log/slog"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// The tenant binding rides on context.Context: it is immutable once set,
// flows to every goroutine spawned with the request's context, and can
// never bleed into an unrelated request. Nesting WithTenant shadows the
// outer binding for the derived context only.

type contextKey struct{}

// WithTenant binds a tenant to the context for the extent of one request.
func WithTenant(ctx context.Context, t *Tenant) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the bound tenant, or false when none is bound.
func FromContext(ctx context.Context) (*Tenant, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tenant)
	return t, ok && t != nil
}

// IDFromContext returns the bound tenant's ID.
func IDFromContext(ctx context.Context) (bson.ObjectID, bool) {
	t, ok := FromContext(ctx)
	if !ok {
		return bson.ObjectID{}, false
	}
	return t.ID, true
}

// Current returns the bound tenant or ErrContextRequired. Scoped
// persistence code uses this as its precondition check.
func Current(ctx context.Context) (*Tenant, error) {
	t, ok := FromContext(ctx)
	if !ok {
		return nil, ErrContextRequired
	}
	return t, nil
}

// HasTenant is a non-failing existence check.
func HasTenant(ctx context.Context) bool {
	_, ok := FromContext(ctx)
	return ok
}

// LoggerExtractor injects the bound tenant ID into log records.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := IDFromContext(ctx); ok {
			return slog.String("tenant_id", id.Hex()), true
		}
		return slog.Attr{}, false
	}
}
