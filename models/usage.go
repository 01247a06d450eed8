package models

import (
	"time"

	"gorm.io/datatypes"
)

// Billable features tracked against per-tier quotas
const (
	FeatureAnalyze    = "analyze"
	FeatureOffer      = "offer"
	FeatureCSVImport  = "csv_import"
	FeatureLeadSearch = "lead_search"
)

// AllFeatures returns every billable feature in a stable order.
func AllFeatures() []string {
	return []string{FeatureAnalyze, FeatureOffer, FeatureCSVImport, FeatureLeadSearch}
}

// ValidFeature reports whether name is a known billable feature.
func ValidFeature(name string) bool {
	for _, f := range AllFeatures() {
		if f == name {
			return true
		}
	}
	return false
}

// UsageRecord is one billable action. Rows are append-only: created on
// every permitted action, never updated or deleted, and counted per
// (user, feature) within the current calendar month for quota checks.
type UsageRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	UserID    uint           `gorm:"not null;index:idx_usage_user_feature" json:"user_id"`
	Feature   string         `gorm:"type:varchar(50);not null;index:idx_usage_user_feature" json:"feature"`
	Metadata  datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
