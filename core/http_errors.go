package core

import "net/http"

// Error is an HTTP-mappable error carrying a stable machine-readable code.
// The Code field is part of the public API contract: clients branch on it
// to distinguish, for example, a billing hold (TENANT_SUSPENDED) from a
// deprovisioned account (TENANT_INACTIVE).
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"error"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Code + ": " + e.Message
}

// WithMessage returns a copy of the error with a more specific message.
func (e Error) WithMessage(msg string) Error {
	e.Message = msg
	return e
}

// Is matches errors by code, ignoring the human-readable message.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.Code == e.Code
}

// Tenant resolution and lifecycle errors.
var (
	ErrTenantNotResolved = Error{
		Status: http.StatusBadRequest,
		Code:   "TENANT_NOT_RESOLVED",
		Message: "Could not resolve tenant from request. " +
			"Provide via subdomain, X-Tenant-ID header, or JWT token.",
	}
	ErrTenantSuspended = Error{
		Status:  http.StatusForbidden,
		Code:    "TENANT_SUSPENDED",
		Message: "Tenant account is suspended. Contact support.",
	}
	ErrTenantInactive = Error{
		Status:  http.StatusForbidden,
		Code:    "TENANT_INACTIVE",
		Message: "Tenant is not active",
	}
	// ErrTenantContextRequired signals a wiring defect: a tenant-scoped
	// operation executed without a bound tenant context. It is not
	// retryable and should page, not be shown to end users.
	ErrTenantContextRequired = Error{
		Status:  http.StatusInternalServerError,
		Code:    "TENANT_CONTEXT_REQUIRED",
		Message: "Tenant context required for this operation",
	}
)

// Quota and rate-limit errors.
var (
	ErrRateLimitExceeded = Error{
		Status:  http.StatusTooManyRequests,
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "API rate limit exceeded",
	}
	ErrUserLimitReached = Error{
		Status:  http.StatusForbidden,
		Code:    "USER_LIMIT_REACHED",
		Message: "Maximum users reached for current tier",
	}
	ErrTransactionLimitReached = Error{
		Status:  http.StatusForbidden,
		Code:    "TRANSACTION_LIMIT_REACHED",
		Message: "Monthly transaction limit reached",
	}
)

// Generic errors.
var (
	ErrBadRequest = Error{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: "Invalid request",
	}
	ErrUnauthorized = Error{
		Status:  http.StatusUnauthorized,
		Code:    "UNAUTHORIZED",
		Message: "Invalid credentials",
	}
	ErrNotFound = Error{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "Resource not found",
	}
	ErrConflict = Error{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "Resource already exists",
	}
	ErrInternal = Error{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_SERVER_ERROR",
		Message: "Internal server error",
	}
)

// NewError creates a custom HTTP error.
func NewError(status int, code, message string) Error {
	return Error{Status: status, Code: code, Message: message}
}
