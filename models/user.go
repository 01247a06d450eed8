package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an investor account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash  string `gorm:"not null" json:"-"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`
	TokenVersion  int    `gorm:"default:0" json:"-"`

	// Google OAuth fields
	GoogleID       *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	GoogleImageURL *string `json:"google_image_url,omitempty"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	Company  *string `json:"company,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Timezone string  `gorm:"default:'UTC'" json:"timezone"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`

	// Subscription information
	PlanID                *uint      `json:"plan_id,omitempty"`
	PlanName              string     `gorm:"default:'free'" json:"plan_name"`             // free, pro, professional, team, enterprise
	SubscriptionStatus    string     `gorm:"default:'active'" json:"subscription_status"` // active, trialing, canceled
	SubscriptionPeriodEnd *time.Time `json:"subscription_period_end,omitempty"`

	// Stripe integration
	StripeCustomerID     *string `gorm:"index" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `json:"stripe_subscription_id,omitempty"`
	DefaultCurrency      string  `gorm:"default:'usd'" json:"default_currency"`

	// Relations
	CrmLeads      []CrmLead     `gorm:"foreignKey:UserID" json:"crm_leads,omitempty"`
	SavedSearches []SavedSearch `gorm:"foreignKey:UserID" json:"saved_searches,omitempty"`
	OfferLetters  []OfferLetter `gorm:"foreignKey:UserID" json:"offer_letters,omitempty"`
}

// Subscription statuses as reported by the billing provider
const (
	SubscriptionActive   = "active"
	SubscriptionTrialing = "trialing"
	SubscriptionCanceled = "canceled"
)

// EffectiveTier returns the tier used for quota lookups. A canceled
// subscription whose paid period has lapsed falls back to the free tier.
func (u *User) EffectiveTier() string {
	if u.PlanName == "" || u.PlanName == TierFree {
		return TierFree
	}
	if u.SubscriptionStatus == SubscriptionCanceled {
		if u.SubscriptionPeriodEnd == nil || u.SubscriptionPeriodEnd.Before(time.Now()) {
			return TierFree
		}
	}
	return u.PlanName
}

// RefreshToken stores issued refresh tokens so they can be revoked
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`

	User User `json:"-"`
}
