package controller

import (
	"bytes"
	"log"
	"strconv"
	"text/template"
	"time"

	"dealflow/models"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OfferController struct {
	DB       *gorm.DB
	Enforcer *usage.Enforcer
	Logger   *log.Logger
}

func NewOfferController(db *gorm.DB, enforcer *usage.Enforcer, logger *log.Logger) *OfferController {
	return &OfferController{
		DB:       db,
		Enforcer: enforcer,
		Logger:   logger,
	}
}

var offerLetterTemplate = template.Must(template.New("offer").Parse(`Dear Seller,

I am writing to present an offer for the property located at {{.Address}}{{if .City}}, {{.City}}{{end}}{{if .State}}, {{.State}}{{end}}.

After careful evaluation, I am prepared to offer {{.OfferPriceFormatted}} for the property, with {{.EarnestFormatted}} in earnest money deposited upon acceptance. I intend to close on or before {{.CloseByDate}}.

This offer is made in cash or equivalent financing with no sale contingency, allowing for a fast and certain closing on your timeline.

Please consider this a serious expression of intent. I am available to discuss terms at your convenience.

Sincerely,
{{.BuyerName}}
Reference: {{.Reference}}`))

type GenerateOfferRequest struct {
	OfferPrice   int    `json:"offer_price" validate:"required,gt=0"`
	EarnestMoney int    `json:"earnest_money" validate:"omitempty,gte=0"`
	CloseDays    int    `json:"close_days" validate:"omitempty,gte=7,lte=120"`
	BuyerName    string `json:"buyer_name" validate:"omitempty,max=100"`
}

// GenerateOffer produces an offer letter for a CRM lead and advances
// the lead to offer_made. Counts against the offer quota.
func (oc *OfferController) GenerateOffer(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var req GenerateOfferRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var lead models.CrmLead
	if err := oc.DB.Where("id = ? AND user_id = ?", leadID, user.ID).First(&lead).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return utils.ErrorResponse(c, fiber.StatusNotFound, "Lead not found", nil)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch lead", err)
	}

	result := oc.Enforcer.Enforce(user.ID, models.FeatureOffer, map[string]interface{}{
		"lead_id": lead.ID,
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

	closeDays := req.CloseDays
	if closeDays == 0 {
		closeDays = 30
	}
	earnest := req.EarnestMoney
	if earnest == 0 {
		earnest = req.OfferPrice / 100 // 1% default
	}
	buyerName := req.BuyerName
	if buyerName == "" && user.Name != nil {
		buyerName = *user.Name
	}
	if buyerName == "" {
		buyerName = user.Email
	}

	closeBy := time.Now().AddDate(0, 0, closeDays)
	reference := uuid.NewString()

	var body bytes.Buffer
	err := offerLetterTemplate.Execute(&body, map[string]interface{}{
		"Address":             lead.Address,
		"City":                lead.City,
		"State":               lead.State,
		"OfferPriceFormatted": formatDollars(req.OfferPrice),
		"EarnestFormatted":    formatDollars(earnest),
		"CloseByDate":         closeBy.Format("January 2, 2006"),
		"BuyerName":           buyerName,
		"Reference":           reference,
	})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to generate offer letter", err)
	}

	offer := models.OfferLetter{
		UserID:       user.ID,
		CrmLeadID:    lead.ID,
		Reference:    reference,
		OfferPrice:   req.OfferPrice,
		EarnestMoney: earnest,
		CloseByDate:  closeBy,
		Body:         body.String(),
	}

	if err := oc.DB.Create(&offer).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save offer letter", err)
	}

	if lead.Status == models.LeadStatusNew || lead.Status == models.LeadStatusContacted {
		oc.DB.Model(&lead).Update("status", models.LeadStatusOfferMade)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(offer))
}

// GetOffers lists a lead's generated offer letters
func (oc *OfferController) GetOffers(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)
	leadID := c.Params("id")

	var offers []models.OfferLetter
	if err := oc.DB.Where("crm_lead_id = ? AND user_id = ?", leadID, user.ID).
		Order("created_at DESC").Find(&offers).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch offers", err)
	}

	return c.JSON(utils.SuccessResponse(offers))
}

// formatDollars renders a whole-dollar amount with thousands separators
func formatDollars(amount int) string {
	s := strconv.Itoa(amount)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return "$" + s
}
