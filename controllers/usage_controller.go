package controller

import (
	"log"

	"dealflow/models"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
)

type UsageController struct {
	Checker  *usage.Checker
	Reporter *usage.Reporter
	Logger   *log.Logger
}

func NewUsageController(checker *usage.Checker, reporter *usage.Reporter, logger *log.Logger) *UsageController {
	return &UsageController{
		Checker:  checker,
		Reporter: reporter,
		Logger:   logger,
	}
}

// GetUsageSummary returns per-feature usage, points and the activity
// streak for the authenticated user.
func (uc *UsageController) GetUsageSummary(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	summary := uc.Reporter.Summarize(user.ID)
	return c.JSON(utils.SuccessResponse(summary))
}

// CheckFeatureLimit reports whether the user can run one more action of
// the given feature, without recording anything.
func (uc *UsageController) CheckFeatureLimit(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	feature := c.Params("feature")
	if !models.ValidFeature(feature) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Unknown feature: "+feature, nil)
	}

	status := uc.Checker.CheckLimit(user.ID, feature)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"feature":           feature,
		"has_reached_limit": status.HasReachedLimit,
		"current_usage":     status.CurrentUsage,
		"limit":             status.Limit,
	}))
}
