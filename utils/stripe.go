package utils

import (
	"context"
	"log"
	"time"

	"dealflow/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/webhook"
)

// ConstructStripeEvent securely constructs and verifies a Stripe webhook event
func ConstructStripeEvent(c *fiber.Ctx) (stripe.Event, error) {
	payload := c.Body()
	if len(payload) == 0 {
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Empty request body")
	}

	signature := c.Get("Stripe-Signature")
	if signature == "" {
		log.Println("Missing Stripe-Signature header")
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Missing Stripe-Signature header")
	}

	// Verify the webhook signature with tolerance for clock drift
	event, err := webhook.ConstructEventWithTolerance(
		payload,
		signature,
		config.AppConfig.StripeWebhookSecret,
		5*time.Minute,
	)
	if err != nil {
		log.Printf("Failed to verify webhook signature: %v", err)
		return stripe.Event{}, fiber.NewError(fiber.StatusBadRequest, "Invalid webhook signature")
	}

	return event, nil
}

// GetStripePrice retrieves a price from Stripe with proper error handling
func GetStripePrice(priceID string) (*stripe.Price, error) {
	if priceID == "" {
		return nil, fiber.NewError(fiber.StatusBadRequest, "Price ID is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := price.Get(priceID, &stripe.PriceParams{
		Params: stripe.Params{
			Context: ctx,
		},
	})
	if err != nil {
		log.Printf("Failed to get Stripe price %s: %v", priceID, err)
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Failed to retrieve price information")
	}

	if !p.Active {
		log.Printf("Inactive Stripe price retrieved: %s", priceID)
	}

	return p, nil
}

// GetPriceAmount retrieves the amount in cents for a given price ID
func GetPriceAmount(priceID string) (int64, error) {
	price, err := GetStripePrice(priceID)
	if err != nil {
		return 0, err
	}
	return price.UnitAmount, nil
}
