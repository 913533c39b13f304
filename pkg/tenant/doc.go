// Package tenant implements the multi-tenancy core: the tenant record and
// tier table, request-scoped tenant binding, the cache-backed resolution
// path (signed claim, subdomain, header, custom domain), and the HTTP
// middleware and status guard that enforce tenant identity on every
// request.
//
// The persistent store is the source of truth; the cache layer is a
// disposable accelerator with a short TTL, and every read path degrades
// to the store when the cache is cold or unavailable.
package tenant
