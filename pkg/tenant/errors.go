package tenant

import "errors"

var (
	// ErrNotResolved is returned when no request signal identified a tenant.
	ErrNotResolved = errors.New("tenant could not be resolved from request")

	// ErrNotFound is returned when a resolved identifier matches no tenant.
	ErrNotFound = errors.New("tenant not found")

	// ErrSuspended is returned for tenants on a billing hold. Unlike
	// inactive tenants they remain resolvable so clients see this
	// specific error rather than a generic not-found.
	ErrSuspended = errors.New("tenant is suspended")

	// ErrInactive is returned when a resolved tenant is not active.
	ErrInactive = errors.New("tenant is not active")

	// ErrContextRequired is returned when a tenant-scoped operation runs
	// without a bound tenant context. This is a wiring defect, not a
	// retryable condition.
	ErrContextRequired = errors.New("tenant context required")

	// ErrSlugTaken is returned on creation when the slug already exists.
	ErrSlugTaken = errors.New("tenant slug already exists")

	// ErrInvalidSlug is returned on creation for malformed slugs.
	ErrInvalidSlug = errors.New("invalid tenant slug")

	// ErrUnknownTier is returned for tier values outside the tier table.
	ErrUnknownTier = errors.New("unknown tenant tier")
)
