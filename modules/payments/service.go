package payments

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/core"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/scoped"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/usage"
)

// PaymentStore is the slice of the scoped collection the payments
// service needs. *scoped.Collection satisfies it.
type PaymentStore interface {
	InsertOne(ctx context.Context, doc any) (*mongo.InsertOneResult, error)
	Find(ctx context.Context, filter any, findOpts *options.FindOptionsBuilder, opts ...scoped.Option) (*mongo.Cursor, error)
	FindOne(ctx context.Context, filter any, result any, opts ...scoped.Option) error
	CountDocuments(ctx context.Context, filter any, opts ...scoped.Option) (int64, error)
	SoftDeleteOne(ctx context.Context, filter any, opts ...scoped.Option) (*mongo.UpdateResult, error)
}

// Service handles tenant-scoped payment records and enforces the tier's
// monthly transaction ceiling.
type Service struct {
	payments PaymentStore
	tracker  *usage.Tracker
	log      *slog.Logger
	now      func() time.Time
}

// ServiceOption configures the payments service.
type ServiceOption func(*Service)

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the payments service.
func NewService(payments PaymentStore, tracker *usage.Tracker, log *slog.Logger, opts ...ServiceOption) *Service {
	if log == nil {
		log = slog.Default()
	}
	s := &Service{payments: payments, tracker: tracker, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateParams are the inputs for creating a payment.
type CreateParams struct {
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency,omitempty"`
	SenderName      string         `json:"senderName"`
	SenderAccount   string         `json:"senderAccount"`
	ReceiverName    string         `json:"receiverName"`
	ReceiverAccount string         `json:"receiverAccount"`
	Description     string         `json:"description,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Create admits a new payment against the tenant's monthly transaction
// limit, persists it under the bound tenant, and records the usage.
// Quota check happens before any side effect: a rejected payment
// increments nothing.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Payment, error) {
	t, err := tenant.Current(ctx)
	if err != nil {
		return nil, err
	}

	if params.Amount <= 0 {
		return nil, core.ErrBadRequest.WithMessage("amount must be positive")
	}

	if t.Settings.MaxTransactionsPerMonth != tenant.Unlimited {
		count, err := s.monthlyTransactionCount(ctx, t)
		if err != nil {
			return nil, err
		}
		if count >= t.Settings.MaxTransactionsPerMonth {
			return nil, core.ErrTransactionLimitReached.WithMessage(fmt.Sprintf(
				"Monthly transaction limit reached (%d of %d used)",
				count, t.Settings.MaxTransactionsPerMonth))
		}
	}

	currency := params.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	now := s.now().UTC()
	payment := &Payment{
		Amount:          params.Amount,
		Currency:        currency,
		Status:          StatusPending,
		SenderName:      params.SenderName,
		SenderAccount:   params.SenderAccount,
		ReceiverName:    params.ReceiverName,
		ReceiverAccount: params.ReceiverAccount,
		Reference:       s.generateReference(t.Slug),
		Description:     params.Description,
		Metadata:        params.Metadata,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	res, err := s.payments.InsertOne(ctx, payment)
	if err != nil {
		return nil, fmt.Errorf("payments: insert: %w", err)
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		payment.ID = id
	}
	payment.TenantID = t.ID

	// Usage recording is advisory: losing a count never fails the
	// payment that already persisted.
	if _, err := s.tracker.IncrementTransactions(ctx, t.ID.Hex()); err != nil {
		s.log.WarnContext(ctx, "transaction usage increment failed", slog.Any("error", err))
	}

	return payment, nil
}

// monthlyTransactionCount reads the cached period count, falling back to
// an authoritative count of this month's persisted payments when the
// cache reports zero. A zero cache read may be a lost entry rather than
// proof of zero activity; the store always settles the question.
func (s *Service) monthlyTransactionCount(ctx context.Context, t *tenant.Tenant) (int64, error) {
	cached, err := s.tracker.TransactionCount(ctx, t.ID.Hex())
	if err != nil {
		s.log.WarnContext(ctx, "cached transaction count unavailable", slog.Any("error", err))
	}
	if cached > 0 {
		return cached, nil
	}

	now := s.now().UTC()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	count, err := s.payments.CountDocuments(ctx, bson.D{
		{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: startOfMonth}}},
	})
	if err != nil {
		return 0, fmt.Errorf("payments: count monthly transactions: %w", err)
	}
	return count, nil
}

// Page is a paginated payment listing.
type Page struct {
	Data       []Payment `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int64     `json:"totalPages"`
}

// List returns the tenant's payments, newest first.
func (s *Service) List(ctx context.Context, page, limit int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := s.payments.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("payments: list: %w", err)
	}
	defer cur.Close(ctx)

	data := []Payment{}
	if err := cur.All(ctx, &data); err != nil {
		return nil, fmt.Errorf("payments: list decode: %w", err)
	}

	total, err := s.payments.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("payments: count: %w", err)
	}

	return &Page{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
	}, nil
}

// Get returns one of the tenant's payments by ID.
func (s *Service) Get(ctx context.Context, id string) (*Payment, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, core.ErrBadRequest.WithMessage("invalid payment id")
	}

	var payment Payment
	err = s.payments.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}, &payment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, core.ErrNotFound.WithMessage("Payment not found")
		}
		return nil, fmt.Errorf("payments: get: %w", err)
	}
	return &payment, nil
}

// Delete soft-deletes one of the tenant's payments.
func (s *Service) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return core.ErrBadRequest.WithMessage("invalid payment id")
	}

	res, err := s.payments.SoftDeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("payments: delete: %w", err)
	}
	if res.MatchedCount == 0 {
		return core.ErrNotFound.WithMessage("Payment not found")
	}
	return nil
}

const referenceCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateReference builds a human-readable unique payment reference,
// e.g. PAY-HDFC-20260828-X7K2Q9. Uniqueness is ultimately guaranteed by
// the {tenantId, reference} index.
func (s *Service) generateReference(slug string) string {
	buf := make([]byte, 6)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = referenceCharset[int(b)%len(referenceCharset)]
	}
	return fmt.Sprintf("PAY-%s-%s-%s",
		strings.ToUpper(slug), s.now().UTC().Format("20060102"), string(buf))
}
