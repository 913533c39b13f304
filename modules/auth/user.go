package auth

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/scoped"
)

// CollectionName is the tenant-scoped users collection.
const CollectionName = "users"

// Role values for tenant users.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User is a tenant-scoped account. PasswordHash is excluded from every
// serialized form; it only exists between the store and bcrypt.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	scoped.Fields `bson:",inline"`
	Email         string    `bson:"email" json:"email"`
	Name          string    `bson:"name" json:"name"`
	PasswordHash  []byte    `bson:"passwordHash" json:"-"`
	Role          string    `bson:"role" json:"role"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// EnsureIndexes creates the per-tenant unique email index. Email is not
// globally unique: two tenants may each have the same address.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenantId", Value: 1},
			{Key: "email", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("auth: ensure indexes: %w", err)
	}
	return nil
}
