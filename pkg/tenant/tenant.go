package tenant

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Status is the tenant lifecycle state. Tenants are never hard-deleted;
// deprovisioning transitions them to StatusInactive.
type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusInactive  Status = "inactive"
)

// Settings holds the tier-derived quota and capability configuration.
// The struct is always fully populated: tier changes re-derive every
// field atomically, never a partial subset.
type Settings struct {
	MaxUsers                int64    `bson:"maxUsers" json:"maxUsers"`
	MaxTransactionsPerMonth int64    `bson:"maxTransactionsPerMonth" json:"maxTransactionsPerMonth"`
	APIRateLimit            int      `bson:"apiRateLimit" json:"apiRateLimit"` // requests per minute
	Features                []string `bson:"features" json:"features"`
}

// WhiteLabel holds per-tenant branding for white-label deployments.
type WhiteLabel struct {
	LogoURL      string `bson:"logoUrl,omitempty" json:"logoUrl,omitempty"`
	PrimaryColor string `bson:"primaryColor" json:"primaryColor"`
	CompanyName  string `bson:"companyName" json:"companyName"`
}

// DefaultPrimaryColor is applied when a tenant is created without branding.
const DefaultPrimaryColor = "#1a73e8"

// Tenant is the identity and policy record for one customer organization.
// Slug and CustomDomain are each globally unique; both are resolution keys.
type Tenant struct {
	ID           bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug         string        `bson:"slug" json:"slug"`
	Name         string        `bson:"name" json:"name"`
	CustomDomain string        `bson:"customDomain,omitempty" json:"customDomain,omitempty"`
	Tier         Tier          `bson:"tier" json:"tier"`
	Settings     Settings      `bson:"settings" json:"settings"`
	WhiteLabel   WhiteLabel    `bson:"whiteLabel" json:"whiteLabel"`
	Status       Status        `bson:"status" json:"status"`
	CreatedAt    time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusInactive:
		return true
	}
	return false
}

// IsActive reports whether the tenant may serve traffic.
func (t *Tenant) IsActive() bool {
	return t.Status == StatusActive
}

// HasFeature reports whether the tenant's tier enables a capability tag.
func (t *Tenant) HasFeature(feature string) bool {
	for _, f := range t.Settings.Features {
		if f == feature {
			return true
		}
	}
	return false
}
