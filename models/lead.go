package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CRM pipeline statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusOfferMade = "offer_made"
	LeadStatusClosed    = "closed"
	LeadStatusDead      = "dead"
)

// ValidLeadStatus reports whether s is a known pipeline status.
func ValidLeadStatus(s string) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusOfferMade, LeadStatusClosed, LeadStatusDead:
		return true
	}
	return false
}

// CrmLead is a persisted, deduplicated lead owned by a user.
//
// Two uniqueness guarantees back deduplication: (user_id, property_id)
// for leads carrying an external source identifier, and
// (user_id, normalized_address) for everything else. Inserts that hit
// either constraint surface as a conflict, never a silent overwrite.
type CrmLead struct {
	gorm.Model
	UserID uint `gorm:"not null;index;uniqueIndex:idx_crm_user_property;uniqueIndex:idx_crm_user_address" json:"user_id"`

	// External identifier from the originating source, when known
	PropertyID *string `gorm:"uniqueIndex:idx_crm_user_property" json:"property_id,omitempty"`
	Source     string  `gorm:"index" json:"source"`

	Address           string `gorm:"not null" json:"address"`
	NormalizedAddress string `gorm:"not null;uniqueIndex:idx_crm_user_address" json:"normalized_address"`
	City              string `json:"city"`
	State             string `json:"state"`
	Zip               string `json:"zip"`

	Price        int    `json:"price"`
	DaysOnMarket int    `json:"days_on_market"`
	PropertyType string `json:"property_type"`
	ListingURL   string `json:"listing_url"`
	Description  string `gorm:"type:text" json:"description"`

	Status string `gorm:"type:varchar(20);default:'new';index" json:"status"`
	Notes  string `gorm:"type:text" json:"notes"`

	// Best-effort third-party property data; nil when enrichment failed
	Enrichment datatypes.JSON `gorm:"type:jsonb" json:"enrichment,omitempty"`

	// Relations
	OfferLetters []OfferLetter `gorm:"foreignKey:CrmLeadID" json:"offer_letters,omitempty"`
}

// OfferLetter is a generated offer document tied to a CRM lead
type OfferLetter struct {
	gorm.Model
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	CrmLeadID uint   `gorm:"not null;index" json:"crm_lead_id"`
	Reference string `gorm:"uniqueIndex;not null" json:"reference"`

	OfferPrice   int       `gorm:"not null" json:"offer_price"`
	EarnestMoney int       `json:"earnest_money"`
	CloseByDate  time.Time `json:"close_by_date"`
	Body         string    `gorm:"type:text" json:"body"`

	// Relations
	CrmLead CrmLead `json:"-"`
}
