package payments

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/scoped"
)

// CollectionName is the tenant-scoped payments collection.
const CollectionName = "payments"

// Payment status values.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// DefaultCurrency is applied when a payment omits the currency.
const DefaultCurrency = "INR"

// Payment is one tenant-scoped transaction record.
type Payment struct {
	ID              bson.ObjectID  `bson:"_id,omitempty" json:"id"`
	scoped.Fields   `bson:",inline"`
	Amount          float64        `bson:"amount" json:"amount"`
	Currency        string         `bson:"currency" json:"currency"`
	Status          string         `bson:"status" json:"status"`
	SenderName      string         `bson:"senderName" json:"senderName"`
	SenderAccount   string         `bson:"senderAccount" json:"senderAccount"`
	ReceiverName    string         `bson:"receiverName" json:"receiverName"`
	ReceiverAccount string         `bson:"receiverAccount" json:"receiverAccount"`
	Reference       string         `bson:"reference" json:"reference"`
	Description     string         `bson:"description,omitempty" json:"description,omitempty"`
	Metadata        map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt       time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// EnsureIndexes creates the compound indexes backing scoped queries.
// tenantId leads every index so scoped queries stay on index.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionName).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "tenantId", Value: 1}, {Key: "status", Value: 1}}},
		{
			Keys:    bson.D{{Key: "tenantId", Value: 1}, {Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("payments: ensure indexes: %w", err)
	}
	return nil
}
