package scoped

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

// Fields are the isolation attributes carried by every tenant-scoped
// record. Embed in model structs; TenantID is assigned from the bound
// context at creation and is immutable afterwards.
type Fields struct {
	TenantID  bson.ObjectID `bson:"tenantId" json:"-"`
	IsDeleted bool          `bson:"isDeleted" json:"-"`
	DeletedAt *time.Time    `bson:"deletedAt,omitempty" json:"-"`
}

type scopeOptions struct {
	skipTenantFilter   bool
	includeSoftDeleted bool
}

// Option adjusts scoping for a single operation.
type Option func(*scopeOptions)

// SkipTenantFilter disables tenant scoping for one operation. Reserved
// for administrative and maintenance paths that legitimately operate
// across tenants.
func SkipTenantFilter() Option {
	return func(o *scopeOptions) { o.skipTenantFilter = true }
}

// IncludeSoftDeleted makes soft-deleted records visible to one operation.
func IncludeSoftDeleted() Option {
	return func(o *scopeOptions) { o.includeSoftDeleted = true }
}

func buildOptions(opts []Option) scopeOptions {
	var o scopeOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// scopeFilter builds the filter conjunct enforcing isolation for the
// bound tenant. Returns tenant.ErrContextRequired when no tenant is
// bound and scoping was not explicitly skipped.
func scopeFilter(ctx context.Context, o scopeOptions) (bson.D, error) {
	if o.skipTenantFilter {
		return nil, nil
	}

	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrContextRequired
	}

	filter := bson.D{{Key: "tenantId", Value: id}}
	if !o.includeSoftDeleted {
		filter = append(filter, bson.E{Key: "isDeleted", Value: bson.D{{Key: "$ne", Value: true}}})
	}
	return filter, nil
}

// applyScope conjoins the caller's filter with the tenant scope. The
// conjunction is deliberate: a caller filter naming another tenant's ID
// yields the empty set instead of that tenant's data.
func applyScope(ctx context.Context, filter any, o scopeOptions) (any, error) {
	scope, err := scopeFilter(ctx, o)
	if err != nil {
		return nil, err
	}
	if scope == nil {
		if filter == nil {
			return bson.D{}, nil
		}
		return filter, nil
	}
	if isEmptyFilter(filter) {
		return scope, nil
	}
	return bson.D{{Key: "$and", Value: bson.A{scope, filter}}}, nil
}

func isEmptyFilter(filter any) bool {
	switch f := filter.(type) {
	case nil:
		return true
	case bson.D:
		return len(f) == 0
	case bson.M:
		return len(f) == 0
	default:
		return false
	}
}

// injectTenant rewrites an insert document: any caller-supplied tenantId
// is discarded, the bound tenant's ID is stamped in, and the soft-delete
// fields are initialized when absent.
func injectTenant(ctx context.Context, doc any) (bson.D, error) {
	id, ok := tenant.IDFromContext(ctx)
	if !ok {
		return nil, tenant.ErrContextRequired
	}

	d, err := toDocument(doc)
	if err != nil {
		return nil, err
	}

	out := make(bson.D, 0, len(d)+3)
	hasIsDeleted, hasDeletedAt := false, false
	for _, e := range d {
		switch e.Key {
		case "tenantId":
			continue // caller-supplied value is never trusted
		case "isDeleted":
			hasIsDeleted = true
		case "deletedAt":
			hasDeletedAt = true
		}
		out = append(out, e)
	}

	out = append(out, bson.E{Key: "tenantId", Value: id})
	if !hasIsDeleted {
		out = append(out, bson.E{Key: "isDeleted", Value: false})
	}
	if !hasDeletedAt {
		out = append(out, bson.E{Key: "deletedAt", Value: nil})
	}
	return out, nil
}

// sanitizeUpdate strips tenantId from the update document, both at the
// top level and inside $set/$setOnInsert, so no update path can
// reassign a record to another tenant.
func sanitizeUpdate(update any) (bson.D, error) {
	d, err := toDocument(update)
	if err != nil {
		return nil, err
	}

	out := make(bson.D, 0, len(d))
	for _, e := range d {
		if e.Key == "tenantId" {
			continue
		}
		if e.Key == "$set" || e.Key == "$setOnInsert" {
			e.Value = dropKey(e.Value, "tenantId")
		}
		out = append(out, e)
	}
	return out, nil
}

func dropKey(doc any, key string) any {
	switch d := doc.(type) {
	case bson.D:
		out := make(bson.D, 0, len(d))
		for _, e := range d {
			if e.Key != key {
				out = append(out, e)
			}
		}
		return out
	case bson.M:
		out := make(bson.M, len(d))
		for k, v := range d {
			if k != key {
				out[k] = v
			}
		}
		return out
	default:
		return doc
	}
}

// prependScope places the tenant/soft-delete $match as the first
// pipeline stage so every subsequent stage operates on an already
// scoped document set.
func prependScope(ctx context.Context, pipeline []bson.D, o scopeOptions) ([]bson.D, error) {
	scope, err := scopeFilter(ctx, o)
	if err != nil {
		return nil, err
	}
	if scope == nil {
		return pipeline, nil
	}

	match := bson.D{{Key: "$match", Value: scope}}
	return append([]bson.D{match}, pipeline...), nil
}

// toDocument normalizes any caller value into bson.D via a marshal
// round-trip, so the rewriting code sees one uniform shape.
func toDocument(v any) (bson.D, error) {
	if d, ok := v.(bson.D); ok {
		return d, nil
	}
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("scoped: marshal document: %w", err)
	}
	var d bson.D
	if err := bson.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("scoped: normalize document: %w", err)
	}
	return d, nil
}
