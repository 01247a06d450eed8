package controller

import (
	"encoding/json"
	"log"
	"strconv"
	"time"

	"dealflow/config"
	"dealflow/models"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/customer"
	"gorm.io/gorm"
)

func InitStripe() {
	stripe.Key = config.AppConfig.StripeSecretKey
}

type BillingController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewBillingController(db *gorm.DB, logger *log.Logger) *BillingController {
	return &BillingController{
		DB:     db,
		Logger: logger,
	}
}

// GetPlans lists all subscription plans with display prices resolved
// from Stripe when a price ID is configured.
func (bc *BillingController) GetPlans(c *fiber.Ctx) error {
	var plans []models.Plan
	if err := bc.DB.Order("price ASC").Find(&plans).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch plans", nil)
	}

	for i := range plans {
		plans[i].DisplayPrice = "$" + strconv.Itoa(plans[i].Price/100)
		if plans[i].StripePriceID != "" {
			if amount, err := utils.GetPriceAmount(plans[i].StripePriceID); err == nil {
				plans[i].DisplayPrice = "$" + strconv.FormatInt(amount/100, 10)
			}
		}
	}

	return c.JSON(utils.SuccessResponse(plans))
}

type CheckoutRequest struct {
	PlanName string `json:"plan_name" validate:"required,oneof=pro professional team enterprise"`
}

// CreateCheckoutSession starts a Stripe Checkout flow for a paid plan.
func (bc *BillingController) CreateCheckoutSession(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", nil)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var plan models.Plan
	if err := bc.DB.Where("name = ?", req.PlanName).First(&plan).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Plan not found", nil)
	}
	if plan.StripePriceID == "" {
		bc.Logger.Printf("plan %s has no Stripe price configured", plan.Name)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Plan is not available for purchase", nil)
	}

	customerID, err := bc.getOrCreateStripeCustomer(user)
	if err != nil {
		bc.Logger.Printf("failed to create Stripe customer for user %d: %v", user.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start checkout", nil)
	}

	params := &stripe.CheckoutSessionParams{
		Customer: stripe.String(customerID),
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(config.AppConfig.CheckoutSuccessURL),
		CancelURL:  stripe.String(config.AppConfig.CheckoutCancelURL),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"user_id":   strconv.Itoa(int(user.ID)),
				"plan_name": plan.Name,
			},
		},
	}

	sess, err := session.New(params)
	if err != nil {
		bc.Logger.Printf("failed to create checkout session: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start checkout", nil)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"session_id":   sess.ID,
		"checkout_url": sess.URL,
	}))
}

// HandleStripeWebhook applies subscription lifecycle events to the
// local user record. Tier changes take effect on the next quota check.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	event, err := utils.ConstructStripeEvent(c)
	if err != nil {
		return err
	}

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		return bc.applySubscription(c, event, false)
	case "customer.subscription.deleted":
		return bc.applySubscription(c, event, true)
	default:
		// acknowledge everything else so Stripe stops retrying
		return c.SendStatus(fiber.StatusOK)
	}
}

func (bc *BillingController) applySubscription(c *fiber.Ctx, event stripe.Event, deleted bool) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		bc.Logger.Printf("failed to parse subscription event: %v", err)
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid event payload", nil)
	}

	var user models.User
	if err := bc.DB.Where("stripe_customer_id = ?", sub.Customer.ID).First(&user).Error; err != nil {
		// the customer may belong to another environment; ack anyway
		bc.Logger.Printf("no user for Stripe customer %s", sub.Customer.ID)
		return c.SendStatus(fiber.StatusOK)
	}

	updates := map[string]interface{}{
		"stripe_subscription_id": sub.ID,
	}

	if deleted {
		updates["subscription_status"] = models.SubscriptionCanceled
	} else {
		switch sub.Status {
		case stripe.SubscriptionStatusActive:
			updates["subscription_status"] = models.SubscriptionActive
		case stripe.SubscriptionStatusTrialing:
			updates["subscription_status"] = models.SubscriptionTrialing
		default:
			updates["subscription_status"] = models.SubscriptionCanceled
		}
		if planName := sub.Metadata["plan_name"]; planName != "" {
			updates["plan_name"] = planName
		}
	}

	if sub.CurrentPeriodEnd > 0 {
		updates["subscription_period_end"] = time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	}

	if err := bc.DB.Model(&user).Updates(updates).Error; err != nil {
		bc.Logger.Printf("failed to apply subscription update for user %d: %v", user.ID, err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to apply subscription", nil)
	}

	bc.Logger.Printf("subscription %s applied to user %d (status %v)", sub.ID, user.ID, updates["subscription_status"])
	return c.SendStatus(fiber.StatusOK)
}

func (bc *BillingController) getOrCreateStripeCustomer(user *models.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": strconv.Itoa(int(user.ID)),
		},
	}
	if user.Name != nil {
		params.Name = stripe.String(*user.Name)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", err
	}

	if err := bc.DB.Model(user).Update("stripe_customer_id", cust.ID).Error; err != nil {
		return "", err
	}
	user.StripeCustomerID = &cust.ID
	return cust.ID, nil
}
