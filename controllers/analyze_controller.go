package controller

import (
	"log"
	"math"

	"dealflow/models"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
)

type AnalyzeController struct {
	Enforcer *usage.Enforcer
	Enricher *utils.Enricher
	Logger   *log.Logger
}

func NewAnalyzeController(enforcer *usage.Enforcer, enricher *utils.Enricher, logger *log.Logger) *AnalyzeController {
	return &AnalyzeController{
		Enforcer: enforcer,
		Enricher: enricher,
		Logger:   logger,
	}
}

type AnalyzeRequest struct {
	Address         string  `json:"address" validate:"required,max=300"`
	AskingPrice     int     `json:"asking_price" validate:"required,gt=0"`
	ARV             int     `json:"arv" validate:"required,gt=0"` // after-repair value
	RepairCost      int     `json:"repair_cost" validate:"gte=0"`
	MonthlyRent     int     `json:"monthly_rent" validate:"omitempty,gte=0"`
	MonthlyExpenses int     `json:"monthly_expenses" validate:"omitempty,gte=0"`
	DownPaymentPct  float64 `json:"down_payment_pct" validate:"omitempty,gte=0,lte=100"`
	InterestRate    float64 `json:"interest_rate" validate:"omitempty,gte=0,lte=30"`
}

// DealAnalysis is the computed investment breakdown for a property
type DealAnalysis struct {
	MaxAllowableOffer int     `json:"max_allowable_offer"` // 70% rule
	EquityAtPurchase  int     `json:"equity_at_purchase"`
	MonthlyPayment    int     `json:"monthly_payment"`
	MonthlyCashFlow   int     `json:"monthly_cash_flow"`
	CashOnCashReturn  float64 `json:"cash_on_cash_return"` // annual, percent
	MeetsSeventyRule  bool    `json:"meets_seventy_rule"`
}

// AnalyzeDeal computes the investment numbers for a prospective deal.
// Pure function, exported for reuse by the offer generator.
func AnalyzeDeal(req AnalyzeRequest) DealAnalysis {
	mao := int(float64(req.ARV)*0.7) - req.RepairCost

	downPct := req.DownPaymentPct
	if downPct == 0 {
		downPct = 20
	}
	rate := req.InterestRate
	if rate == 0 {
		rate = 7.0
	}

	downPayment := float64(req.AskingPrice) * downPct / 100
	principal := float64(req.AskingPrice) - downPayment

	// standard amortization, 30-year term
	monthlyRate := rate / 100 / 12
	n := 360.0
	var payment float64
	if monthlyRate > 0 {
		payment = principal * monthlyRate * math.Pow(1+monthlyRate, n) / (math.Pow(1+monthlyRate, n) - 1)
	} else {
		payment = principal / n
	}

	cashFlow := float64(req.MonthlyRent) - float64(req.MonthlyExpenses) - payment

	cashInvested := downPayment + float64(req.RepairCost)
	var cashOnCash float64
	if cashInvested > 0 {
		cashOnCash = cashFlow * 12 / cashInvested * 100
	}

	return DealAnalysis{
		MaxAllowableOffer: mao,
		EquityAtPurchase:  req.ARV - req.AskingPrice - req.RepairCost,
		MonthlyPayment:    int(math.Round(payment)),
		MonthlyCashFlow:   int(math.Round(cashFlow)),
		CashOnCashReturn:  math.Round(cashOnCash*100) / 100,
		MeetsSeventyRule:  req.AskingPrice <= mao,
	}
}

// AnalyzeProperty runs a usage-gated deal analysis, attaching property
// enrichment data when the provider answers in time.
func (ac *AnalyzeController) AnalyzeProperty(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req AnalyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	result := ac.Enforcer.Enforce(user.ID, models.FeatureAnalyze, map[string]interface{}{
		"address": req.Address,
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

	analysis := AnalyzeDeal(req)

	response := fiber.Map{
		"analysis": analysis,
		"usage": fiber.Map{
			"current_usage": result.CurrentUsage,
			"limit":         result.Limit,
		},
	}

	// Enrichment is best-effort display data
	if details, err := ac.Enricher.FetchDetails(req.Address); err == nil {
		response["property"] = details
	}

	return c.JSON(utils.SuccessResponse(response))
}
