package routes

import (
	"context"
	"log"
	"os"
	"time"

	"dealflow/config"
	controller "dealflow/controllers"
	"dealflow/middleware"
	"dealflow/scraper"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// BuildPool wires the configured listing sources into a search pool.
// main shares the same pool with the alert worker.
func BuildPool(appLogger *logrus.Logger) *scraper.Pool {
	cfg := config.AppConfig
	sources := []scraper.Source{
		scraper.NewMLSSource(cfg.MLSSource.BaseURL, cfg.MLSSource.APIKey),
		scraper.NewFSBOSource(cfg.FSBOSource.BaseURL, cfg.FSBOSource.APIKey),
		scraper.NewAuctionSource(cfg.AuctionSource.BaseURL, cfg.AuctionSource.APIKey),
		scraper.NewWholesaleSource(cfg.WholesaleSource.BaseURL, cfg.WholesaleSource.APIKey),
	}
	return scraper.NewPool(sources, cfg.ScraperAttempts, cfg.ScraperRetryWait, appLogger)
}

func SetupRoutes(app *fiber.App, db *gorm.DB, pool *scraper.Pool, appLogger *logrus.Logger) {
	// Usage plumbing shared by every gated controller
	store := usage.NewGormStore(db)
	checker := usage.NewChecker(store, appLogger)
	enforcer := usage.NewEnforcer(checker, store, appLogger)
	reporter := usage.NewReporter(checker, store)

	// Enrichment cache: Redis when configured, otherwise in-process
	var cache utils.Cache
	if config.AppConfig.Redis.Enabled {
		cache = utils.NewRedisCache(config.AppConfig.Redis.Address, config.AppConfig.Redis.Password, config.AppConfig.Redis.DB)
	} else {
		memCache := utils.NewMemoryCache()
		go memCache.Janitor(context.Background(), 10*time.Minute)
		cache = memCache
	}
	enricher := utils.NewEnricher(
		config.AppConfig.EnrichmentBaseURL,
		config.AppConfig.EnrichmentAPIKey,
		config.AppConfig.EnrichmentCacheTTL,
		cache,
		appLogger,
	)

	searchController := controller.NewSearchController(db, pool, enforcer, log.New(os.Stdout, "SEARCH: ", log.LstdFlags))
	crmController := controller.NewCrmController(db, enricher, enforcer, log.New(os.Stdout, "CRM: ", log.LstdFlags))
	analyzeController := controller.NewAnalyzeController(enforcer, enricher, log.New(os.Stdout, "ANALYZE: ", log.LstdFlags))
	offerController := controller.NewOfferController(db, enforcer, log.New(os.Stdout, "OFFER: ", log.LstdFlags))
	usageController := controller.NewUsageController(checker, reporter, log.New(os.Stdout, "USAGE: ", log.LstdFlags))
	savedSearchController := controller.NewSavedSearchController(db, log.New(os.Stdout, "SAVED-SEARCH: ", log.LstdFlags))
	billingController := controller.NewBillingController(db, log.New(os.Stdout, "BILLING: ", log.LstdFlags))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Auth routes group with logging middleware
	auth := app.Group("/auth", logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	auth.Post("/register", controller.Register)
	auth.Post("/login", controller.Login)
	auth.Post("/refresh", controller.RefreshToken)
	auth.Get("/google", controller.GoogleOAuth)
	auth.Get("/google/callback", controller.GoogleOAuthCallback)

	protectedAuth := auth.Group("", middleware.Protected())
	protectedAuth.Post("/logout", controller.Logout)
	protectedAuth.Get("/me", controller.GetCurrentUser)

	// Stripe webhook is authenticated by signature, not JWT
	app.Post("/billing/webhook", billingController.HandleStripeWebhook)
	app.Get("/billing/plans", billingController.GetPlans)

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Lead search, rate limited per user
	search := api.Group("/search", middleware.SearchRateLimiter())
	search.Post("/", searchController.SearchLeads)

	// WebSocket route for live search progress
	app.Get("/api/v1/search/progress", middleware.Protected(), websocket.New(func(c *websocket.Conn) {
		searchController.HandleSearchProgressWS(c)
	}))

	// CRM pipeline routes
	leads := api.Group("/leads")
	leads.Post("/", crmController.SaveLead)
	leads.Get("/", crmController.GetLeads)
	leads.Post("/import", crmController.ImportLeads)
	leads.Get("/:id", crmController.GetLead)
	leads.Put("/:id", crmController.UpdateLead)
	leads.Delete("/:id", crmController.DeleteLead)

	// Offer letters hang off a CRM lead
	leads.Post("/:id/offers", offerController.GenerateOffer)
	leads.Get("/:id/offers", offerController.GetOffers)

	// Deal analysis
	api.Post("/analyze", analyzeController.AnalyzeProperty)

	// Usage routes
	usageGroup := api.Group("/usage")
	usageGroup.Get("/summary", usageController.GetUsageSummary)
	usageGroup.Get("/limits/:feature", usageController.CheckFeatureLimit)

	// Saved searches and alerts
	saved := api.Group("/saved-searches")
	saved.Post("/", savedSearchController.CreateSavedSearch)
	saved.Get("/", savedSearchController.GetSavedSearches)
	saved.Put("/:id", savedSearchController.UpdateSavedSearch)
	saved.Patch("/:id/enabled", savedSearchController.SetSavedSearchEnabled)
	saved.Delete("/:id", savedSearchController.DeleteSavedSearch)

	// Billing (protected)
	billing := api.Group("/billing")
	billing.Post("/checkout", billingController.CreateCheckoutSession)

	// 404 fallback
	app.Use(func(c *fiber.Ctx) error {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Route not found", nil)
	})
}
