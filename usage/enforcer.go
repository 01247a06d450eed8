package usage

import (
	"encoding/json"

	"dealflow/models"

	"github.com/sirupsen/logrus"
)

// Enforce status codes
const (
	StatusOK                = "OK"
	StatusUsageLimitReached = "USAGE_LIMIT_REACHED"
	StatusInternal          = "INTERNAL_ERROR"
)

// EnforceResult is the caller-facing outcome of an enforcement call
type EnforceResult struct {
	Success      bool   `json:"success"`
	StatusCode   string `json:"status_code"`
	CurrentUsage int64  `json:"current_usage"`
	Limit        int64  `json:"limit"` // -1 means unlimited
	Message      string `json:"message,omitempty"`
}

// Enforcer gates billable actions: check the limit, then append exactly
// one usage record for a permitted action. A rejected action writes
// nothing, so a user is never charged for work that did not run.
//
// The check and the append are not one atomic operation: two requests
// arriving at limit-1 can both pass the check before either records.
// This is an accepted soft limit, not a hard quota.
type Enforcer struct {
	checker *Checker
	store   Store
	logger  *logrus.Logger
}

func NewEnforcer(checker *Checker, store Store, logger *logrus.Logger) *Enforcer {
	return &Enforcer{
		checker: checker,
		store:   store,
		logger:  logger,
	}
}

// Enforce permits and records one use of feature, or rejects it with a
// structured quota payload.
func (e *Enforcer) Enforce(userID uint, feature string, metadata map[string]interface{}) EnforceResult {
	status := e.checker.CheckLimit(userID, feature)
	if status.HasReachedLimit {
		return EnforceResult{
			Success:      false,
			StatusCode:   StatusUsageLimitReached,
			CurrentUsage: status.CurrentUsage,
			Limit:        status.Limit,
			Message:      "Monthly limit reached for this feature. Upgrade your plan to continue.",
		}
	}

	record := &models.UsageRecord{
		UserID:  userID,
		Feature: feature,
	}
	if len(metadata) > 0 {
		if raw, err := json.Marshal(metadata); err == nil {
			record.Metadata = raw
		}
	}

	if err := e.store.Record(record); err != nil {
		e.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"feature": feature,
			"error":   err.Error(),
		}).Error("failed to record usage")
		return EnforceResult{
			Success:    false,
			StatusCode: StatusInternal,
			Limit:      status.Limit,
			Message:    "Failed to record usage",
		}
	}

	current := status.CurrentUsage
	if status.Limit != Unlimited {
		current++
	}

	return EnforceResult{
		Success:      true,
		StatusCode:   StatusOK,
		CurrentUsage: current,
		Limit:        status.Limit,
	}
}
