// Package usage tracks per-tenant monthly API calls and transactions.
// Counters are keyed by tenant and calendar month (UTC) so period
// boundaries happen automatically, and carry a TTL comfortably longer
// than one billing cycle so a counter created near month-end survives
// the whole period. Counts here are advisory accounting: the persistent
// store remains the authority whenever the fast path is ambiguous.
package usage

import (
	"context"
	"fmt"
	"time"
)

// CounterTTL spans a full billing cycle with margin.
const CounterTTL = 35 * 24 * time.Hour

// Counter is the atomic monthly-counter store.
type Counter interface {
	// Incr atomically increments key, setting ttl on it, and returns
	// the new value.
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)

	// Get returns the counter value, zero when the key is absent.
	Get(ctx context.Context, key string) (int64, error)
}

// Summary is the current-period usage snapshot for billing.
type Summary struct {
	Period       string `json:"period"`
	APICalls     int64  `json:"apiCalls"`
	Transactions int64  `json:"transactions"`
}

// Tracker records and reports per-tenant usage.
type Tracker struct {
	counter Counter
	ttl     time.Duration
	now     func() time.Time
}

// TrackerOption configures the tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source. Used by tests to cross month
// boundaries without waiting.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithTTL overrides the counter TTL.
func WithTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// NewTracker creates a usage tracker over the given counter store.
func NewTracker(counter Counter, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		counter: counter,
		ttl:     CounterTTL,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Period returns the current billing period key, e.g. "2026-08".
func (t *Tracker) Period() string {
	return t.now().UTC().Format("2006-01")
}

func (t *Tracker) apiKey(tenantID string) string {
	return fmt.Sprintf("usage:api:%s:%s", tenantID, t.Period())
}

func (t *Tracker) txnKey(tenantID string) string {
	return fmt.Sprintf("usage:txn:%s:%s", tenantID, t.Period())
}

// IncrementAPICalls records one API call for the tenant this period.
func (t *Tracker) IncrementAPICalls(ctx context.Context, tenantID string) error {
	_, err := t.counter.Incr(ctx, t.apiKey(tenantID), t.ttl)
	return err
}

// IncrementTransactions records one transaction and returns the new
// period total.
func (t *Tracker) IncrementTransactions(ctx context.Context, tenantID string) (int64, error) {
	return t.counter.Incr(ctx, t.txnKey(tenantID), t.ttl)
}

// TransactionCount returns the cached period total. A zero return may
// mean either no activity or a lost cache entry; quota enforcement must
// treat it as ambiguous and fall back to the persistent store.
func (t *Tracker) TransactionCount(ctx context.Context, tenantID string) (int64, error) {
	return t.counter.Get(ctx, t.txnKey(tenantID))
}

// GetSummary returns the tenant's current-period usage.
func (t *Tracker) GetSummary(ctx context.Context, tenantID string) (Summary, error) {
	apiCalls, err := t.counter.Get(ctx, t.apiKey(tenantID))
	if err != nil {
		return Summary{}, err
	}
	transactions, err := t.counter.Get(ctx, t.txnKey(tenantID))
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Period:       t.Period(),
		APICalls:     apiCalls,
		Transactions: transactions,
	}, nil
}
