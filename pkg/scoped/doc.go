// Package scoped is the tenant data-isolation layer. Every persistence
// operation against a tenant-owned collection goes through
// scoped.Collection, which injects the bound tenant's ID on writes and
// conjoins a tenant + soft-delete filter onto reads, counts, updates,
// deletes, and aggregations. Call sites cannot forget to scope a query:
// an operation without a bound tenant context fails, and a caller-supplied
// tenantId is always overridden (creates) or conjoined away (reads).
//
// Administrative and maintenance code paths opt out explicitly with
// SkipTenantFilter; nothing opts out by default.
package scoped
