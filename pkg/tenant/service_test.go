package tenant

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// fakeStore is an in-memory Store that counts lookups, so tests can
// assert the cache actually short-circuits the store.
type fakeStore struct {
	mu          sync.Mutex
	bySlug      map[string]*Tenant
	slugLookups int
	domLookups  int
}

func newFakeStore(tenants ...*Tenant) *fakeStore {
	s := &fakeStore{bySlug: make(map[string]*Tenant)}
	for _, t := range tenants {
		if t.ID.IsZero() {
			t.ID = bson.NewObjectID()
		}
		s.bySlug[t.Slug] = t
	}
	return s
}

func (s *fakeStore) FindBySlug(ctx context.Context, slug string) (*Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slugLookups++
	t, ok := s.bySlug[slug]
	if !ok || t.Status == StatusInactive {
		return nil, ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (s *fakeStore) FindByCustomDomain(ctx context.Context, domain string) (*Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domLookups++
	for _, t := range s.bySlug {
		if t.CustomDomain == domain && t.Status != StatusInactive {
			copy := *t
			return &copy, nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *t
	return &copy, nil
}

func (s *fakeStore) Insert(ctx context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bySlug[t.Slug]; exists {
		return ErrSlugTaken
	}
	t.ID = bson.NewObjectID()
	s.bySlug[t.Slug] = t
	return nil
}

func (s *fakeStore) List(ctx context.Context) ([]Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Tenant, 0, len(s.bySlug))
	for _, t := range s.bySlug {
		out = append(out, *t)
	}
	return out, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, id bson.ObjectID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.bySlug {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return ErrNotFound
}

func TestService_Create(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies tier defaults and starts active", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		created, err := svc.Create(ctx, CreateParams{Slug: "hdfc", Name: "HDFC Bank", Tier: TierStarter})
		require.NoError(t, err)

		assert.Equal(t, StatusActive, created.Status)
		assert.Equal(t, int64(10), created.Settings.MaxUsers)
		assert.Equal(t, int64(1000), created.Settings.MaxTransactionsPerMonth)
		assert.Equal(t, 60, created.Settings.APIRateLimit)
		assert.Equal(t, []string{"basic_payments"}, created.Settings.Features)
		assert.Equal(t, "HDFC Bank", created.WhiteLabel.CompanyName)
		assert.Equal(t, DefaultPrimaryColor, created.WhiteLabel.PrimaryColor)
	})

	t.Run("enterprise gets unlimited quotas", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		created, err := svc.Create(ctx, CreateParams{Slug: "mega", Name: "Mega", Tier: TierEnterprise})
		require.NoError(t, err)
		assert.Equal(t, Unlimited, created.Settings.MaxUsers)
		assert.Equal(t, Unlimited, created.Settings.MaxTransactionsPerMonth)
	})

	t.Run("duplicate slug", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(&Tenant{Slug: "hdfc", Status: StatusActive}), NewMemoryCache())

		_, err := svc.Create(ctx, CreateParams{Slug: "hdfc", Name: "x", Tier: TierStarter})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("rejects malformed slugs", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		for _, slug := range []string{"", "Bad", "has space", "-leading", "trailing-", "under_score"} {
			_, err := svc.Create(ctx, CreateParams{Slug: slug, Name: "x", Tier: TierStarter})
			assert.ErrorIs(t, err, ErrInvalidSlug, "slug %q", slug)
		}
	})

	t.Run("unknown tier", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		_, err := svc.Create(ctx, CreateParams{Slug: "x", Name: "x", Tier: "platinum"})
		assert.ErrorIs(t, err, ErrUnknownTier)
	})
}

func TestService_FindBySlug(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("second lookup is served from cache", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&Tenant{Slug: "hdfc", Status: StatusActive})
		svc := NewService(store, NewMemoryCache())

		first, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)

		second, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, store.slugLookups)
	})

	t.Run("unknown slug", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		_, err := svc.FindBySlug(ctx, "ghost")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("suspended tenants are still resolvable", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&Tenant{Slug: "hdfc", Status: StatusSuspended})
		svc := NewService(store, NewMemoryCache())

		got, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)
		assert.Equal(t, StatusSuspended, got.Status)
	})

	t.Run("inactive tenants are invisible", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&Tenant{Slug: "hdfc", Status: StatusInactive})
		svc := NewService(store, NewMemoryCache())

		_, err := svc.FindBySlug(ctx, "hdfc")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_FindByCustomDomain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store := newFakeStore(&Tenant{Slug: "hdfc", CustomDomain: "payments.hdfc.com", Status: StatusActive})
	svc := NewService(store, NewMemoryCache())

	first, err := svc.FindByCustomDomain(ctx, "payments.hdfc.com")
	require.NoError(t, err)
	assert.Equal(t, "hdfc", first.Slug)
	assert.Equal(t, 1, store.domLookups)

	// The domain mapping and the tenant snapshot are both cached: the
	// second lookup hits neither store path.
	_, err = svc.FindByCustomDomain(ctx, "payments.hdfc.com")
	require.NoError(t, err)
	assert.Equal(t, 1, store.domLookups)
	assert.Equal(t, 0, store.slugLookups)

	_, err = svc.FindByCustomDomain(ctx, "unknown.example.org")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_SetStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("invalidates the cached snapshot", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&Tenant{Slug: "hdfc", Status: StatusActive})
		svc := NewService(store, NewMemoryCache())

		// Warm the cache.
		_, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)

		updated, err := svc.SetStatusBySlug(ctx, "hdfc", StatusSuspended)
		require.NoError(t, err)
		assert.Equal(t, StatusSuspended, updated.Status)

		// The next resolution sees the new status immediately, not the
		// stale cached copy.
		got, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)
		assert.Equal(t, StatusSuspended, got.Status)
	})

	t.Run("inactive tenants can be reactivated", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore(&Tenant{Slug: "hdfc", Status: StatusInactive})
		svc := NewService(store, NewMemoryCache())

		updated, err := svc.SetStatusBySlug(ctx, "hdfc", StatusActive)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, updated.Status)

		got, err := svc.FindBySlug(ctx, "hdfc")
		require.NoError(t, err)
		assert.Equal(t, StatusActive, got.Status)
	})

	t.Run("unknown slug", func(t *testing.T) {
		t.Parallel()
		svc := NewService(newFakeStore(), NewMemoryCache())

		_, err := svc.SetStatusBySlug(ctx, "ghost", StatusSuspended)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
