package controller

import (
	"encoding/csv"
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"dealflow/models"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// leadStore is the persistence surface the save and import paths go
// through. Conflict detection lives behind it so the mapping from a
// unique violation to the existing row can be exercised without Postgres.
type leadStore interface {
	Create(lead *models.CrmLead) error
	FindExisting(userID uint, propertyID *string, normalizedAddress string) (*models.CrmLead, error)
}

// leadEnricher is satisfied by *utils.Enricher
type leadEnricher interface {
	FetchDetails(address string) (*utils.PropertyDetails, error)
}

type CrmController struct {
	DB       *gorm.DB
	Store    leadStore
	Enricher leadEnricher
	Enforcer *usage.Enforcer
	Logger   *log.Logger
}

func NewCrmController(db *gorm.DB, enricher *utils.Enricher, enforcer *usage.Enforcer, logger *log.Logger) *CrmController {
	return &CrmController{
		DB:       db,
		Store:    gormLeadStore{db: db},
		Enricher: enricher,
		Enforcer: enforcer,
		Logger:   logger,
	}
}

type gormLeadStore struct {
	db *gorm.DB
}

func (s gormLeadStore) Create(lead *models.CrmLead) error {
	return s.db.Create(lead).Error
}

func (s gormLeadStore) FindExisting(userID uint, propertyID *string, normalizedAddress string) (*models.CrmLead, error) {
	var existing models.CrmLead
	query := s.db.Where("user_id = ?", userID)
	if propertyID != nil {
		query = query.Where("property_id = ? OR normalized_address = ?", *propertyID, normalizedAddress)
	} else {
		query = query.Where("normalized_address = ?", normalizedAddress)
	}
	if err := query.First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

type SaveLeadRequest struct {
	PropertyID   string `json:"property_id" validate:"omitempty,max=100"`
	Source       string `json:"source" validate:"omitempty,max=50"`
	Address      string `json:"address" validate:"required,max=300"`
	City         string `json:"city" validate:"omitempty,max=100"`
	State        string `json:"state" validate:"omitempty,max=50"`
	Zip          string `json:"zip" validate:"omitempty,max=20"`
	Price        int    `json:"price" validate:"omitempty,gte=0"`
	DaysOnMarket int    `json:"days_on_market" validate:"omitempty,gte=0"`
	PropertyType string `json:"property_type" validate:"omitempty,max=50"`
	ListingURL   string `json:"listing_url" validate:"omitempty,max=500"`
	Description  string `json:"description"`
	Notes        string `json:"notes"`
}

// SaveLead persists a lead into the CRM. The address is normalized
// before insert so spelled-out and abbreviated forms of the same
// address dedup onto one row; a duplicate returns a conflict carrying
// the existing record's id so the UI can show "already saved" instead
// of an error.
func (cc *CrmController) SaveLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req SaveLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	lead := models.CrmLead{
		UserID:            user.ID,
		Source:            req.Source,
		Address:           req.Address,
		NormalizedAddress: utils.NormalizeAddress(req.Address),
		City:              req.City,
		State:             req.State,
		Zip:               req.Zip,
		Price:             req.Price,
		DaysOnMarket:      req.DaysOnMarket,
		PropertyType:      req.PropertyType,
		ListingURL:        req.ListingURL,
		Description:       req.Description,
		Notes:             req.Notes,
		Status:            models.LeadStatusNew,
	}
	if req.PropertyID != "" {
		lead.PropertyID = &req.PropertyID
	}

	// Best-effort enrichment: a provider failure never blocks the save
	if details, err := cc.Enricher.FetchDetails(req.Address); err == nil {
		if raw, err := json.Marshal(details); err == nil {
			lead.Enrichment = raw
		}
	}

	if err := cc.Store.Create(&lead); err != nil {
		if utils.IsUniqueViolation(err) {
			existing, findErr := cc.Store.FindExisting(user.ID, lead.PropertyID, lead.NormalizedAddress)
			extra := fiber.Map{}
			if findErr == nil {
				extra["id"] = existing.ID
			}
			return utils.CodedErrorResponse(c, fiber.StatusConflict, utils.CodeAlreadyExists,
				"Lead already saved to CRM", extra)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save lead", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(lead))
}

// GetLeads returns paginated CRM leads with filters
func (cc *CrmController) GetLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	query := cc.DB.Where("user_id = ?", user.ID)

	if status := c.Query("status"); status != "" {
		if !models.ValidLeadStatus(status) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid status filter", nil)
		}
		query = query.Where("status = ?", status)
	}
	if city := c.Query("city"); city != "" {
		query = query.Where("city ILIKE ?", "%"+city+"%")
	}
	if source := c.Query("source"); source != "" {
		query = query.Where("source = ?", source)
	}

	var leads []models.CrmLead
	if err := query.Order("updated_at DESC").Offset(offset).Limit(limit).Find(&leads).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch leads", err)
	}

	var total int64
	query.Model(&models.CrmLead{}).Count(&total)

	return c.JSON(utils.PaginatedResponse{
		Data:  leads,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetLead returns a single CRM lead by ID
func (cc *CrmController) GetLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var lead models.CrmLead
	if err := cc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

type UpdateLeadRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=new contacted offer_made closed dead"`
	Notes  string `json:"notes"`
}

// UpdateLead moves a lead through the pipeline and updates notes
func (cc *CrmController) UpdateLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var req UpdateLeadRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.CrmLead
	if err := cc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	if req.Status != "" {
		lead.Status = req.Status
	}
	if req.Notes != "" {
		lead.Notes = req.Notes
	}

	if err := cc.DB.Save(&lead).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update lead", err)
	}

	return c.JSON(utils.SuccessResponse(lead))
}

// DeleteLead removes a lead from the CRM
func (cc *CrmController) DeleteLead(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	result := cc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).Delete(&models.CrmLead{})
	if result.Error != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete lead", result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message": "Lead deleted successfully",
	}))
}

// ImportLeads imports CRM leads from an uploaded CSV file. The import
// counts once against the csv_import quota regardless of row count.
// Rows run through the same normalization/dedup path as single saves;
// duplicates are skipped and reported, not errored.
func (cc *CrmController) ImportLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File upload error", err)
	}

	// Check file size (max 5MB)
	if file.Size > 5<<20 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File too large (max 5MB)", nil)
	}

	result := cc.Enforcer.Enforce(user.ID, models.FeatureCSVImport, map[string]interface{}{
		"filename": file.Filename,
	})
	if !result.Success {
		if result.StatusCode == usage.StatusUsageLimitReached {
			return utils.CodedErrorResponse(c, fiber.StatusForbidden, utils.CodeUsageLimitReached, result.Message, fiber.Map{
				"current_usage": result.CurrentUsage,
				"limit":         result.Limit,
			})
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, result.Message, nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to open file", err)
	}
	defer src.Close()

	reader := csv.NewReader(src)
	records, err := reader.ReadAll()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Failed to parse CSV file", err)
	}

	if len(records) < 2 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "CSV file must have at least a header and one row", nil)
	}

	header := records[0]
	rows := records[1:]

	imported := 0
	skipped := 0
	for _, row := range rows {
		if len(row) != len(header) {
			skipped++
			continue
		}

		rowData := make(map[string]string, len(header))
		for i, col := range header {
			rowData[strings.ToLower(strings.TrimSpace(col))] = strings.TrimSpace(row[i])
		}

		address := rowData["address"]
		if address == "" {
			skipped++
			continue
		}

		lead := models.CrmLead{
			UserID:            user.ID,
			Source:            "csv",
			Address:           address,
			NormalizedAddress: utils.NormalizeAddress(address),
			City:              rowData["city"],
			State:             rowData["state"],
			Zip:               rowData["zip"],
			Price:             utils.ParseInt(rowData["price"]),
			DaysOnMarket:      utils.ParseInt(rowData["days_on_market"]),
			PropertyType:      rowData["property_type"],
			Notes:             rowData["notes"],
			Status:            models.LeadStatusNew,
		}
		if propertyID := rowData["property_id"]; propertyID != "" {
			lead.PropertyID = &propertyID
		}

		if err := cc.Store.Create(&lead); err != nil {
			if utils.IsUniqueViolation(err) {
				skipped++
				continue
			}
			cc.Logger.Printf("Failed to import lead %q: %v", address, err)
			skipped++
			continue
		}
		imported++
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"imported": imported,
		"skipped":  skipped,
	}))
}
