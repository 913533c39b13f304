package scoped

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/salmankhan-prs/multi-tenant-payment-platform/pkg/tenant"
)

func boundContext(t *testing.T) (context.Context, bson.ObjectID) {
	t.Helper()
	id := bson.NewObjectID()
	ctx := tenant.WithTenant(context.Background(), &tenant.Tenant{ID: id, Slug: "acme"})
	return ctx, id
}

func findValue(t *testing.T, d bson.D, key string) any {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found in %v", key, d)
	return nil
}

func TestApplyScope(t *testing.T) {
	t.Parallel()

	t.Run("empty filter becomes the scope itself", func(t *testing.T) {
		t.Parallel()
		ctx, id := boundContext(t)

		out, err := applyScope(ctx, bson.D{}, scopeOptions{})
		require.NoError(t, err)

		scope, ok := out.(bson.D)
		require.True(t, ok)
		assert.Equal(t, id, findValue(t, scope, "tenantId"))
		assert.Equal(t, bson.D{{Key: "$ne", Value: true}}, findValue(t, scope, "isDeleted"))
	})

	t.Run("caller filter is conjoined, not merged", func(t *testing.T) {
		t.Parallel()
		ctx, id := boundContext(t)

		// A filter naming another tenant must yield a contradiction,
		// never that tenant's records.
		other := bson.NewObjectID()
		out, err := applyScope(ctx, bson.D{{Key: "tenantId", Value: other}}, scopeOptions{})
		require.NoError(t, err)

		and, ok := out.(bson.D)
		require.True(t, ok)
		clauses, ok := findValue(t, and, "$and").(bson.A)
		require.True(t, ok)
		require.Len(t, clauses, 2)

		scope := clauses[0].(bson.D)
		assert.Equal(t, id, findValue(t, scope, "tenantId"))
		caller := clauses[1].(bson.D)
		assert.Equal(t, other, findValue(t, caller, "tenantId"))
	})

	t.Run("no bound tenant fails", func(t *testing.T) {
		t.Parallel()
		_, err := applyScope(context.Background(), bson.D{}, scopeOptions{})
		assert.ErrorIs(t, err, tenant.ErrContextRequired)
	})

	t.Run("skip tenant filter passes the filter through", func(t *testing.T) {
		t.Parallel()
		filter := bson.D{{Key: "status", Value: "pending"}}

		out, err := applyScope(context.Background(), filter, scopeOptions{skipTenantFilter: true})
		require.NoError(t, err)
		assert.Equal(t, filter, out)
	})

	t.Run("include soft deleted drops the isDeleted clause", func(t *testing.T) {
		t.Parallel()
		ctx, _ := boundContext(t)

		out, err := applyScope(ctx, bson.D{}, scopeOptions{includeSoftDeleted: true})
		require.NoError(t, err)

		scope := out.(bson.D)
		require.Len(t, scope, 1)
		assert.Equal(t, "tenantId", scope[0].Key)
	})
}

func TestInjectTenant(t *testing.T) {
	t.Parallel()

	t.Run("stamps the bound tenant and soft-delete defaults", func(t *testing.T) {
		t.Parallel()
		ctx, id := boundContext(t)

		out, err := injectTenant(ctx, bson.D{{Key: "name", Value: "x"}})
		require.NoError(t, err)

		assert.Equal(t, id, findValue(t, out, "tenantId"))
		assert.Equal(t, false, findValue(t, out, "isDeleted"))
		assert.Equal(t, nil, findValue(t, out, "deletedAt"))
	})

	t.Run("caller-supplied tenantId is discarded", func(t *testing.T) {
		t.Parallel()
		ctx, id := boundContext(t)

		forged := bson.NewObjectID()
		out, err := injectTenant(ctx, bson.D{{Key: "tenantId", Value: forged}})
		require.NoError(t, err)

		count := 0
		for _, e := range out {
			if e.Key == "tenantId" {
				count++
				assert.Equal(t, id, e.Value)
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("struct documents are normalized", func(t *testing.T) {
		t.Parallel()
		ctx, id := boundContext(t)

		type record struct {
			Fields `bson:",inline"`
			Name   string `bson:"name"`
		}
		out, err := injectTenant(ctx, &record{Name: "x"})
		require.NoError(t, err)
		assert.Equal(t, id, findValue(t, out, "tenantId"))
		assert.Equal(t, "x", findValue(t, out, "name"))
	})

	t.Run("no bound tenant fails", func(t *testing.T) {
		t.Parallel()
		_, err := injectTenant(context.Background(), bson.D{})
		assert.ErrorIs(t, err, tenant.ErrContextRequired)
	})
}

func TestSanitizeUpdate(t *testing.T) {
	t.Parallel()

	t.Run("strips tenantId from $set", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizeUpdate(bson.D{{Key: "$set", Value: bson.D{
			{Key: "tenantId", Value: bson.NewObjectID()},
			{Key: "status", Value: "completed"},
		}}})
		require.NoError(t, err)

		set := findValue(t, out, "$set").(bson.D)
		require.Len(t, set, 1)
		assert.Equal(t, "status", set[0].Key)
	})

	t.Run("strips tenantId from $set given as bson.M", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizeUpdate(bson.D{{Key: "$set", Value: bson.M{
			"tenantId": bson.NewObjectID(),
			"status":   "completed",
		}}})
		require.NoError(t, err)

		set := findValue(t, out, "$set").(bson.M)
		assert.NotContains(t, set, "tenantId")
		assert.Contains(t, set, "status")
	})

	t.Run("strips top-level tenantId", func(t *testing.T) {
		t.Parallel()

		out, err := sanitizeUpdate(bson.D{
			{Key: "tenantId", Value: bson.NewObjectID()},
			{Key: "$inc", Value: bson.D{{Key: "n", Value: 1}}},
		})
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, "$inc", out[0].Key)
	})

	t.Run("other operators pass through untouched", func(t *testing.T) {
		t.Parallel()

		in := bson.D{{Key: "$unset", Value: bson.D{{Key: "description", Value: ""}}}}
		out, err := sanitizeUpdate(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})
}

func TestPrependScope(t *testing.T) {
	t.Parallel()

	ctx, id := boundContext(t)

	pipeline := []bson.D{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: "$status"}}}},
	}
	out, err := prependScope(ctx, pipeline, scopeOptions{})
	require.NoError(t, err)
	require.Len(t, out, 2)

	match := findValue(t, out[0], "$match").(bson.D)
	assert.Equal(t, id, findValue(t, match, "tenantId"))
	assert.Equal(t, "$group", out[1][0].Key)

	_, err = prependScope(context.Background(), pipeline, scopeOptions{})
	assert.ErrorIs(t, err, tenant.ErrContextRequired)
}
