package tenant

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tier is a named subscription level determining quota and feature defaults.
type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

// Unlimited is the sentinel meaning "no limit" for any quota field.
// Enforcement code must skip the check entirely when it sees this value.
const Unlimited int64 = -1

// tierDefaults is the built-in tier→settings table. Applied when a tenant
// is created; changing a tenant's tier reapplies the corresponding
// defaults unless explicit overrides exist.
var tierDefaults = map[Tier]Settings{
	TierStarter: {
		MaxUsers:                10,
		MaxTransactionsPerMonth: 1000,
		APIRateLimit:            60,
		Features:                []string{"basic_payments"},
	},
	TierProfessional: {
		MaxUsers:                100,
		MaxTransactionsPerMonth: 50000,
		APIRateLimit:            300,
		Features:                []string{"basic_payments", "bulk_payments", "analytics"},
	},
	TierEnterprise: {
		MaxUsers:                Unlimited,
		MaxTransactionsPerMonth: Unlimited,
		APIRateLimit:            1000,
		Features: []string{
			"basic_payments", "bulk_payments", "analytics",
			"custom_workflows", "white_label", "api_access",
		},
	},
}

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	_, ok := tierDefaults[t]
	return ok
}

// DefaultSettings returns a copy of the default settings for the tier.
// The Features slice is cloned so callers cannot mutate the table.
func DefaultSettings(t Tier) (Settings, error) {
	s, ok := tierDefaults[t]
	if !ok {
		return Settings{}, fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	s.Features = append([]string(nil), s.Features...)
	return s, nil
}

// LoadTierDefaults replaces the built-in tier table with values from a
// YAML file. Partial files are rejected: each listed tier must populate
// every settings field so a tenant never receives a partially-derived
// configuration. Intended to be called once at startup, before any
// tenant is created.
func LoadTierDefaults(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("tenant: read tier defaults: %w", err)
	}

	var file struct {
		Tiers map[Tier]struct {
			MaxUsers                *int64   `yaml:"maxUsers"`
			MaxTransactionsPerMonth *int64   `yaml:"maxTransactionsPerMonth"`
			APIRateLimit            *int     `yaml:"apiRateLimit"`
			Features                []string `yaml:"features"`
		} `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("tenant: parse tier defaults: %w", err)
	}

	for tier, cfg := range file.Tiers {
		if cfg.MaxUsers == nil || cfg.MaxTransactionsPerMonth == nil ||
			cfg.APIRateLimit == nil || cfg.Features == nil {
			return fmt.Errorf("tenant: tier %q: all settings fields are required", tier)
		}
		tierDefaults[tier] = Settings{
			MaxUsers:                *cfg.MaxUsers,
			MaxTransactionsPerMonth: *cfg.MaxTransactionsPerMonth,
			APIRateLimit:            *cfg.APIRateLimit,
			Features:                append([]string(nil), cfg.Features...),
		}
	}
	return nil
}
