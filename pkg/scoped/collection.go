package scoped

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection wraps a mongo collection holding tenant-scoped records.
// All operations consult the bound tenant context; see the package
// documentation for the isolation contract.
type Collection struct {
	coll *mongo.Collection
}

// Wrap creates a scoped view over a mongo collection.
func Wrap(coll *mongo.Collection) *Collection {
	return &Collection{coll: coll}
}

// Name returns the underlying collection name.
func (c *Collection) Name() string {
	return c.coll.Name()
}

// Unscoped exposes the raw collection for index management and other
// schema-level operations that carry no tenant data access.
func (c *Collection) Unscoped() *mongo.Collection {
	return c.coll
}

// InsertOne persists a record under the bound tenant. There is no
// default tenant: inserting without a bound context fails, and any
// tenantId supplied on the document is replaced with the context's.
func (c *Collection) InsertOne(ctx context.Context, doc any) (*mongo.InsertOneResult, error) {
	scoped, err := injectTenant(ctx, doc)
	if err != nil {
		return nil, err
	}
	return c.coll.InsertOne(ctx, scoped)
}

// Find runs a scoped query.
func (c *Collection) Find(ctx context.Context, filter any, findOpts *options.FindOptionsBuilder, opts ...Option) (*mongo.Cursor, error) {
	scoped, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	if findOpts == nil {
		return c.coll.Find(ctx, scoped)
	}
	return c.coll.Find(ctx, scoped, findOpts)
}

// FindOne decodes the first scoped match into result. Returns
// mongo.ErrNoDocuments when nothing matches within the tenant's data.
func (c *Collection) FindOne(ctx context.Context, filter any, result any, opts ...Option) error {
	scoped, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return err
	}
	return c.coll.FindOne(ctx, scoped).Decode(result)
}

// CountDocuments counts scoped matches.
func (c *Collection) CountDocuments(ctx context.Context, filter any, opts ...Option) (int64, error) {
	scoped, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return 0, err
	}
	return c.coll.CountDocuments(ctx, scoped)
}

// Aggregate runs a pipeline with the tenant/soft-delete $match prepended
// as the first stage.
func (c *Collection) Aggregate(ctx context.Context, pipeline []bson.D, opts ...Option) (*mongo.Cursor, error) {
	scoped, err := prependScope(ctx, pipeline, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return c.coll.Aggregate(ctx, scoped)
}

// UpdateOne applies a scoped update. The update document is sanitized:
// tenant reassignment through any update path is never permitted.
func (c *Collection) UpdateOne(ctx context.Context, filter, update any, opts ...Option) (*mongo.UpdateResult, error) {
	scopedFilter, scopedUpdate, err := c.prepareUpdate(ctx, filter, update, opts)
	if err != nil {
		return nil, err
	}
	return c.coll.UpdateOne(ctx, scopedFilter, scopedUpdate)
}

// UpdateMany applies a scoped multi-document update.
func (c *Collection) UpdateMany(ctx context.Context, filter, update any, opts ...Option) (*mongo.UpdateResult, error) {
	scopedFilter, scopedUpdate, err := c.prepareUpdate(ctx, filter, update, opts)
	if err != nil {
		return nil, err
	}
	return c.coll.UpdateMany(ctx, scopedFilter, scopedUpdate)
}

func (c *Collection) prepareUpdate(ctx context.Context, filter, update any, opts []Option) (any, any, error) {
	scopedFilter, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return nil, nil, err
	}
	scopedUpdate, err := sanitizeUpdate(update)
	if err != nil {
		return nil, nil, err
	}
	return scopedFilter, scopedUpdate, nil
}

// DeleteOne removes a scoped record permanently. Prefer SoftDeleteOne
// for user-facing flows; hard deletes are for maintenance.
func (c *Collection) DeleteOne(ctx context.Context, filter any, opts ...Option) (*mongo.DeleteResult, error) {
	scoped, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return c.coll.DeleteOne(ctx, scoped)
}

// DeleteMany removes scoped records permanently.
func (c *Collection) DeleteMany(ctx context.Context, filter any, opts ...Option) (*mongo.DeleteResult, error) {
	scoped, err := applyScope(ctx, filter, buildOptions(opts))
	if err != nil {
		return nil, err
	}
	return c.coll.DeleteMany(ctx, scoped)
}

// SoftDeleteOne marks the first scoped match as logically removed.
func (c *Collection) SoftDeleteOne(ctx context.Context, filter any, opts ...Option) (*mongo.UpdateResult, error) {
	return c.UpdateOne(ctx, filter, softDeleteUpdate(), opts...)
}

// SoftDeleteMany marks all scoped matches as logically removed.
func (c *Collection) SoftDeleteMany(ctx context.Context, filter any, opts ...Option) (*mongo.UpdateResult, error) {
	return c.UpdateMany(ctx, filter, softDeleteUpdate(), opts...)
}

func softDeleteUpdate() bson.D {
	now := time.Now().UTC()
	return bson.D{{Key: "$set", Value: bson.D{
		{Key: "isDeleted", Value: true},
		{Key: "deletedAt", Value: now},
	}}}
}
