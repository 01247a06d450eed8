package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SavedSearch is a stored lead search re-run daily by the alert worker.
// Paused searches are disabled, not deleted, so alert history and
// criteria survive a pause/resume cycle.
type SavedSearch struct {
	gorm.Model
	UserID uint `gorm:"not null;index" json:"user_id"`

	Name string `gorm:"not null" json:"name"`
	City string `gorm:"not null" json:"city"`

	Sources  datatypes.JSON `gorm:"type:jsonb" json:"sources"`  // array of scraper source names
	Keywords datatypes.JSON `gorm:"type:jsonb" json:"keywords"` // array of OR-matched keywords

	DaysOnMarket   *int   `json:"days_on_market,omitempty"`
	DaysOnMarketOp string `gorm:"type:varchar(10)" json:"days_on_market_op"` // less, more
	PriceMin       *int   `json:"price_min,omitempty"`
	PriceMax       *int   `json:"price_max,omitempty"`
	PropertyType   string `json:"property_type"`

	Enabled           bool `gorm:"default:true" json:"enabled"`
	EmailAlertEnabled bool `gorm:"default:false" json:"email_alert_enabled"`

	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// Relations
	User User `json:"-"`
}
