package models

import (
	"fmt"

	"gorm.io/gorm"
)

// Subscription tiers
const (
	TierFree         = "free"
	TierPro          = "pro"
	TierProfessional = "professional"
	TierTeam         = "team"
	TierEnterprise   = "enterprise"
)

// UnlimitedQuota marks a feature with no usage cap for a tier.
const UnlimitedQuota = -1

// Plan represents a purchasable subscription plan
type Plan struct {
	gorm.Model
	Name        string `gorm:"not null;uniqueIndex" json:"name"` // free, pro, professional, team, enterprise
	Description string `json:"description"`

	Price           int    `gorm:"not null" json:"price"` // in cents, per billing interval
	BillingInterval string `gorm:"default:'monthly'" json:"billing_interval"`

	// Feature flags beyond usage quotas
	EmailAlertsEnabled bool `gorm:"default:false" json:"email_alerts_enabled"`
	EnrichmentEnabled  bool `gorm:"default:false" json:"enrichment_enabled"`
	MaxSavedSearches   int  `gorm:"default:3" json:"max_saved_searches"`
	MaxTeamMembers     int  `gorm:"default:1" json:"max_team_members"`

	// For display purposes
	DisplayPrice string `gorm:"-" json:"display_price"` // e.g. "$49"
	IsPopular    bool   `gorm:"default:false" json:"is_popular"`
	Recommended  bool   `gorm:"default:false" json:"recommended"`

	StripePriceID string `json:"stripe_price_id"` // price_xxx from Stripe dashboard
}

// featureQuotas maps tier -> feature -> monthly quota. Paid tiers are
// uncapped; the free tier carries small fixed allowances.
var featureQuotas = map[string]map[string]int{
	TierFree: {
		FeatureAnalyze:    5,
		FeatureOffer:      3,
		FeatureCSVImport:  2,
		FeatureLeadSearch: 10,
	},
	TierPro: {
		FeatureAnalyze:    UnlimitedQuota,
		FeatureOffer:      UnlimitedQuota,
		FeatureCSVImport:  UnlimitedQuota,
		FeatureLeadSearch: UnlimitedQuota,
	},
	TierProfessional: {
		FeatureAnalyze:    UnlimitedQuota,
		FeatureOffer:      UnlimitedQuota,
		FeatureCSVImport:  UnlimitedQuota,
		FeatureLeadSearch: UnlimitedQuota,
	},
	TierTeam: {
		FeatureAnalyze:    UnlimitedQuota,
		FeatureOffer:      UnlimitedQuota,
		FeatureCSVImport:  UnlimitedQuota,
		FeatureLeadSearch: UnlimitedQuota,
	},
	TierEnterprise: {
		FeatureAnalyze:    UnlimitedQuota,
		FeatureOffer:      UnlimitedQuota,
		FeatureCSVImport:  UnlimitedQuota,
		FeatureLeadSearch: UnlimitedQuota,
	},
}

// AllTiers returns every known subscription tier.
func AllTiers() []string {
	return []string{TierFree, TierPro, TierProfessional, TierTeam, TierEnterprise}
}

// QuotaFor resolves the monthly quota for a tier/feature pair. The second
// return value is false when the pair is unknown; callers must treat that
// as "no access" rather than "no limit".
func QuotaFor(tier, feature string) (int, bool) {
	quotas, ok := featureQuotas[tier]
	if !ok {
		return 0, false
	}
	quota, ok := quotas[feature]
	return quota, ok
}

// IsPaidTier reports whether a tier has uncapped feature usage.
func IsPaidTier(tier string) bool {
	switch tier {
	case TierPro, TierProfessional, TierTeam, TierEnterprise:
		return true
	}
	return false
}

// ValidateQuotas checks at startup that the quota table covers every
// tier/feature combination, so a missing entry surfaces as a boot error
// instead of a runtime denial.
func ValidateQuotas() error {
	for _, tier := range AllTiers() {
		quotas, ok := featureQuotas[tier]
		if !ok {
			return fmt.Errorf("quota table missing tier %q", tier)
		}
		for _, feature := range AllFeatures() {
			if _, ok := quotas[feature]; !ok {
				return fmt.Errorf("quota table missing feature %q for tier %q", feature, tier)
			}
		}
	}
	return nil
}
