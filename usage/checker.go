package usage

import (
	"time"

	"dealflow/models"
	"dealflow/utils"

	"github.com/sirupsen/logrus"
)

// Unlimited is the limit reported for uncapped tiers.
const Unlimited = int64(models.UnlimitedQuota)

// LimitStatus is the outcome of a quota check
type LimitStatus struct {
	HasReachedLimit bool  `json:"has_reached_limit"`
	CurrentUsage    int64 `json:"current_usage"`
	Limit           int64 `json:"limit"` // -1 means unlimited
}

// Checker resolves a user's tier and compares their rolling usage count
// against the tier's quota. Pure read: it never writes usage records.
type Checker struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

func NewChecker(store Store, logger *logrus.Logger) *Checker {
	return &Checker{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// CheckLimit reports whether userID may perform feature one more time
// this month. Unknown callers and unknown features fail closed. A tier
// lookup failure falls back to the free-tier quota rather than granting
// access.
func (c *Checker) CheckLimit(userID uint, feature string) LimitStatus {
	if userID == 0 {
		return LimitStatus{HasReachedLimit: true}
	}

	tier, err := c.store.TierFor(userID)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   err.Error(),
		}).Warn("tier lookup failed, defaulting to free quota")
		tier = models.TierFree
	}

	if models.IsPaidTier(tier) {
		return LimitStatus{HasReachedLimit: false, Limit: Unlimited}
	}

	quota, ok := models.QuotaFor(tier, feature)
	if !ok {
		c.logger.WithFields(logrus.Fields{
			"tier":    tier,
			"feature": feature,
		}).Error("no quota configured, denying")
		return LimitStatus{HasReachedLimit: true}
	}
	if quota == models.UnlimitedQuota {
		return LimitStatus{HasReachedLimit: false, Limit: Unlimited}
	}

	count, err := c.store.CountSince(userID, feature, utils.StartOfMonth(c.now()))
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"feature": feature,
			"error":   err.Error(),
		}).Error("usage count failed, denying")
		return LimitStatus{HasReachedLimit: true, Limit: int64(quota)}
	}

	return LimitStatus{
		HasReachedLimit: count >= int64(quota),
		CurrentUsage:    count,
		Limit:           int64(quota),
	}
}
