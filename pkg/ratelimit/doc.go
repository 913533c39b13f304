// Package ratelimit enforces per-tenant request ceilings with a
// two-window sliding algorithm. Limiters are keyed by the exact
// points-per-minute value derived from the tenant's tier and reused
// across tenants sharing a limit; the backing store consumes points
// atomically so concurrent requests cannot both take the last one.
package ratelimit
