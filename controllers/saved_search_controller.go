package controller

import (
	"encoding/json"
	"log"

	"dealflow/models"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type SavedSearchController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSavedSearchController(db *gorm.DB, logger *log.Logger) *SavedSearchController {
	return &SavedSearchController{
		DB:     db,
		Logger: logger,
	}
}

type SavedSearchRequest struct {
	Name              string   `json:"name" validate:"required,min=1,max=100"`
	City              string   `json:"city" validate:"required,min=2"`
	Sources           []string `json:"sources" validate:"dive,oneof=mls fsbo auction wholesale"`
	Keywords          []string `json:"keywords"`
	DaysOnMarket      *int     `json:"days_on_market" validate:"omitempty,gte=0"`
	DaysOnMarketOp    string   `json:"days_on_market_op" validate:"omitempty,oneof=less more"`
	PriceMin          *int     `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax          *int     `json:"price_max" validate:"omitempty,gte=0"`
	PropertyType      string   `json:"property_type"`
	EmailAlertEnabled bool     `json:"email_alert_enabled"`
}

// CreateSavedSearch stores a new search, capped per plan by
// MaxSavedSearches. Disabled searches count against the cap since a
// resume must never fail.
func (sc *SavedSearchController) CreateSavedSearch(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req SavedSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}
	if req.PriceMin != nil && req.PriceMax != nil && *req.PriceMin > *req.PriceMax {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "price_min cannot exceed price_max", nil)
	}

	var plan models.Plan
	if err := sc.DB.Where("name = ?", user.EffectiveTier()).First(&plan).Error; err != nil {
		sc.Logger.Printf("plan lookup failed for tier %s: %v", user.EffectiveTier(), err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to load plan", nil)
	}

	var count int64
	if err := sc.DB.Model(&models.SavedSearch{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to count saved searches", nil)
	}
	if count >= int64(plan.MaxSavedSearches) {
		return utils.CodedErrorResponse(c, fiber.StatusForbidden, utils.CodeUsageLimitReached,
			"Saved search limit reached for your plan", fiber.Map{
				"current": count,
				"limit":   plan.MaxSavedSearches,
			})
	}

	search, err := sc.searchFromRequest(user.ID, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to encode search criteria", nil)
	}
	if err := sc.DB.Create(search).Error; err != nil {
		sc.Logger.Printf("failed to create saved search: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create saved search", nil)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(search))
}

// GetSavedSearches lists the user's saved searches, newest first.
func (sc *SavedSearchController) GetSavedSearches(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var searches []models.SavedSearch
	if err := sc.DB.Where("user_id = ?", user.ID).Order("created_at DESC").Find(&searches).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch saved searches", nil)
	}

	return c.JSON(utils.SuccessResponse(searches))
}

// UpdateSavedSearch replaces the criteria of an existing search.
func (sc *SavedSearchController) UpdateSavedSearch(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid search ID", nil)
	}

	var req SavedSearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var existing models.SavedSearch
	if err := sc.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Saved search not found", nil)
	}

	updated, err := sc.searchFromRequest(user.ID, req)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to encode search criteria", nil)
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	updated.Enabled = existing.Enabled
	updated.LastRunAt = existing.LastRunAt

	if err := sc.DB.Save(updated).Error; err != nil {
		sc.Logger.Printf("failed to update saved search %d: %v", id, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update saved search", nil)
	}

	return c.JSON(utils.SuccessResponse(updated))
}

func enabledMessage(enabled bool) string {
	if enabled {
		return "Saved search resumed"
	}
	return "Saved search paused"
}

// SetSavedSearchEnabled pauses or resumes a search. A paused search
// keeps its criteria and alert history.
func (sc *SavedSearchController) SetSavedSearchEnabled(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid search ID", nil)
	}

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}

	result := sc.DB.Model(&models.SavedSearch{}).
		Where("id = ? AND user_id = ?", id, user.ID).
		Update("enabled", req.Enabled)
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update saved search", nil)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Saved search not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"id": id, "enabled": req.Enabled, "message": enabledMessage(req.Enabled)}))
}

// DeleteSavedSearch permanently removes a search.
func (sc *SavedSearchController) DeleteSavedSearch(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	id := utils.ParseUint(c.Params("id"))
	if id == 0 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid search ID", nil)
	}

	result := sc.DB.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.SavedSearch{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete saved search", nil)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Saved search not found", nil)
	}

	return c.JSON(utils.SuccessResponse(nil))
}

func (sc *SavedSearchController) searchFromRequest(userID uint, req SavedSearchRequest) (*models.SavedSearch, error) {
	sources, err := json.Marshal(req.Sources)
	if err != nil {
		return nil, err
	}
	keywords, err := json.Marshal(req.Keywords)
	if err != nil {
		return nil, err
	}

	return &models.SavedSearch{
		UserID:            userID,
		Name:              req.Name,
		City:              req.City,
		Sources:           datatypes.JSON(sources),
		Keywords:          datatypes.JSON(keywords),
		DaysOnMarket:      req.DaysOnMarket,
		DaysOnMarketOp:    req.DaysOnMarketOp,
		PriceMin:          req.PriceMin,
		PriceMax:          req.PriceMax,
		PropertyType:      req.PropertyType,
		EmailAlertEnabled: req.EmailAlertEnabled,
	}, nil
}
