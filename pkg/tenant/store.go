package tenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Store is the authoritative source of tenant records. The cache is only
// an accelerator in front of it: the system must remain correct with an
// empty cache and a working Store.
type Store interface {
	// FindBySlug returns the non-inactive tenant with the given slug.
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// FindByCustomDomain returns the non-inactive tenant registered for
	// the given custom domain.
	FindByCustomDomain(ctx context.Context, domain string) (*Tenant, error)

	// GetBySlug returns the tenant regardless of status. Admin use only;
	// request resolution goes through FindBySlug.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// Insert persists a new tenant, failing with ErrSlugTaken when the
	// slug (or custom domain) is already registered.
	Insert(ctx context.Context, t *Tenant) error

	// List returns all tenants, including inactive ones. Admin use only.
	List(ctx context.Context) ([]Tenant, error)

	// UpdateStatus transitions a tenant's lifecycle state.
	UpdateStatus(ctx context.Context, id bson.ObjectID, status Status) error
}

// CollectionName is the tenant collection. It is deliberately NOT
// tenant-scoped: tenants are the platform's own records.
const CollectionName = "tenants"

type mongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore creates a tenant store over db's tenants collection.
func NewMongoStore(db *mongo.Database) Store {
	return &mongoStore{coll: db.Collection(CollectionName)}
}

// EnsureIndexes creates the unique slug index and the unique-sparse
// customDomain index backing the two resolution paths.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "customDomain", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("tenant: ensure indexes: %w", err)
	}
	return nil
}

func (s *mongoStore) FindBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.findOne(ctx, bson.D{
		{Key: "slug", Value: slug},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: StatusInactive}}},
	})
}

func (s *mongoStore) FindByCustomDomain(ctx context.Context, domain string) (*Tenant, error) {
	return s.findOne(ctx, bson.D{
		{Key: "customDomain", Value: domain},
		{Key: "status", Value: bson.D{{Key: "$ne", Value: StatusInactive}}},
	})
}

func (s *mongoStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.findOne(ctx, bson.D{{Key: "slug", Value: slug}})
}

func (s *mongoStore) findOne(ctx context.Context, filter bson.D) (*Tenant, error) {
	var t Tenant
	if err := s.coll.FindOne(ctx, filter).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("tenant: find: %w", err)
	}
	return &t, nil
}

func (s *mongoStore) Insert(ctx context.Context, t *Tenant) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	res, err := s.coll.InsertOne(ctx, t)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("tenant: insert: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		t.ID = id
	}
	return nil
}

func (s *mongoStore) List(ctx context.Context) ([]Tenant, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("tenant: list: %w", err)
	}
	defer cur.Close(ctx)

	var tenants []Tenant
	if err := cur.All(ctx, &tenants); err != nil {
		return nil, fmt.Errorf("tenant: list decode: %w", err)
	}
	return tenants, nil
}

func (s *mongoStore) UpdateStatus(ctx context.Context, id bson.ObjectID, status Status) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "status", Value: status},
			{Key: "updatedAt", Value: time.Now().UTC()},
		}}},
	)
	if err != nil {
		return fmt.Errorf("tenant: update status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
