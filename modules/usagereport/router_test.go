package usagereport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/ratelimit"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/usage"
)

func TestHandleReport(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)
	tracker := usage.NewTracker(usage.NewMemoryCounter(), usage.WithClock(func() time.Time { return now }))
	registry := ratelimit.NewRegistry(ratelimit.NewMemoryStore(), time.Minute)

	tn := &tenant.Tenant{
		ID:   bson.NewObjectID(),
		Slug: "hdfc",
		Tier: tenant.TierEnterprise,
		Settings: tenant.Settings{
			MaxUsers:                tenant.Unlimited,
			MaxTransactionsPerMonth: tenant.Unlimited,
			APIRateLimit:            1000,
		},
	}

	ctx := tenant.WithTenant(context.Background(), tn)
	require.NoError(t, tracker.IncrementAPICalls(ctx, tn.ID.Hex()))
	_, err := tracker.IncrementTransactions(ctx, tn.ID.Hex())
	require.NoError(t, err)

	srv := Router(tracker, registry, nil)

	r := httptest.NewRequest("GET", "/", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "hdfc", body["tenant"])
	assert.Equal(t, "enterprise", body["tier"])
	assert.Equal(t, "2026-08", body["period"])

	usageBody := body["usage"].(map[string]any)
	assert.Equal(t, float64(1), usageBody["apiCalls"])
	assert.Equal(t, float64(1), usageBody["transactions"])
	assert.Equal(t, "unlimited", usageBody["transactionsRemaining"])

	limits := body["limits"].(map[string]any)
	assert.Equal(t, "unlimited", limits["maxUsers"])
	assert.Equal(t, "unlimited", limits["maxTransactionsPerMonth"])
	assert.Equal(t, float64(1000), limits["apiRateLimit"])

	rateLimit := body["rateLimit"].(map[string]any)
	assert.Equal(t, float64(1000), rateLimit["remaining"])
	assert.GreaterOrEqual(t, rateLimit["resetInSeconds"], float64(1))
}

func TestHandleReport_NoTenant(t *testing.T) {
	t.Parallel()

	tracker := usage.NewTracker(usage.NewMemoryCounter())
	registry := ratelimit.NewRegistry(ratelimit.NewMemoryStore(), time.Minute)

	srv := Router(tracker, registry, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDisplayLimit(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unlimited", displayLimit(tenant.Unlimited))
	assert.Equal(t, int64(1000), displayLimit(1000))
	assert.Equal(t, int64(0), displayLimit(0))
}

func TestRemainingTransactions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "unlimited", remainingTransactions(tenant.Unlimited, 500))
	assert.Equal(t, int64(900), remainingTransactions(1000, 100))
	assert.Equal(t, int64(0), remainingTransactions(1000, 1000))
	assert.Equal(t, int64(0), remainingTransactions(1000, 1200))
}
