package models

import "gorm.io/gorm"

// CreateDefaultPlans seeds the purchasable plans during migration
func CreateDefaultPlans(db *gorm.DB) error {
	defaultPlans := []Plan{
		{
			Name:               TierFree,
			Description:        "Free plan with limited monthly analyses, offers and searches",
			Price:              0,
			MaxSavedSearches:   1,
			EmailAlertsEnabled: false,
			EnrichmentEnabled:  false,
		},
		{
			Name:               TierPro,
			Description:        "Unlimited deal analysis, offers and lead searches for solo investors",
			Price:              4900, // $49
			MaxSavedSearches:   10,
			EmailAlertsEnabled: true,
			EnrichmentEnabled:  true,
			DisplayPrice:       "$49",
			IsPopular:          true,
			Recommended:        true,
		},
		{
			Name:               TierProfessional,
			Description:        "Everything in Pro plus priority enrichment data",
			Price:              9900, // $99
			MaxSavedSearches:   25,
			EmailAlertsEnabled: true,
			EnrichmentEnabled:  true,
			DisplayPrice:       "$99",
		},
		{
			Name:               TierTeam,
			Description:        "Shared pipeline for small acquisition teams",
			Price:              19900, // $199
			MaxSavedSearches:   50,
			MaxTeamMembers:     5,
			EmailAlertsEnabled: true,
			EnrichmentEnabled:  true,
			DisplayPrice:       "$199",
		},
		{
			Name:               TierEnterprise,
			Description:        "Custom plan for high-volume acquisition desks",
			Price:              49900, // $499
			MaxSavedSearches:   200,
			MaxTeamMembers:     25,
			EmailAlertsEnabled: true,
			EnrichmentEnabled:  true,
			DisplayPrice:       "$499",
		},
	}
	for _, plan := range defaultPlans {
		if err := db.FirstOrCreate(&plan, "name = ?", plan.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
