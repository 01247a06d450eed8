package controller

import (
	"context"
	"log"
	"time"

	"dealflow/models"
	"dealflow/scraper"
	"dealflow/usage"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SearchController struct {
	DB       *gorm.DB
	Pool     *scraper.Pool
	Enforcer *usage.Enforcer
	Logger   *log.Logger
}

func NewSearchController(db *gorm.DB, pool *scraper.Pool, enforcer *usage.Enforcer, logger *log.Logger) *SearchController {
	return &SearchController{
		DB:       db,
		Pool:     pool,
		Enforcer: enforcer,
		Logger:   logger,
	}
}

type SearchRequest struct {
	City           string   `json:"city" validate:"required,max=100"`
	Sources        []string `json:"sources" validate:"omitempty,dive,oneof=mls fsbo auction wholesale"`
	Keywords       []string `json:"keywords" validate:"omitempty,dive,max=100"`
	DaysOnMarket   *int     `json:"days_on_market" validate:"omitempty,gte=0"`
	DaysOnMarketOp string   `json:"days_on_market_op" validate:"omitempty,oneof=less more"`
	PriceMin       *int     `json:"price_min" validate:"omitempty,gte=0"`
	PriceMax       *int     `json:"price_max" validate:"omitempty,gte=0"`
	PropertyType   string   `json:"property_type" validate:"omitempty,max=50"`
}

func (req *SearchRequest) toParams() scraper.SearchParams {
	return scraper.SearchParams{
		City:           req.City,
		Sources:        req.Sources,
		Keywords:       req.Keywords,
		DaysOnMarket:   req.DaysOnMarket,
		DaysOnMarketOp: req.DaysOnMarketOp,
		PriceMin:       req.PriceMin,
		PriceMax:       req.PriceMax,
		PropertyType:   req.PropertyType,
	}
}

// SearchLeads runs the aggregation pipeline across the requested
// sources. The search counts against the caller's lead_search quota.
func (sc *SearchController) SearchLeads(c *fiber.Ctx) error {
	user := c.Locals("user").(*models.User)

	var req SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(req); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	result := sc.Enforcer.Enforce(user.ID, models.FeatureLeadSearch, map[string]interface{}{
		"city":    req.City,
		"sources": req.Sources,
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

	ctx, cancel := context.WithTimeout(c.Context(), 60*time.Second)
	defer cancel()

	leads, sourceResults := sc.Pool.Search(ctx, req.toParams(), nil)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"leads":   leads,
		"sources": sourceResults,
		"usage": fiber.Map{
			"current_usage": result.CurrentUsage,
			"limit":         result.Limit,
		},
	}))
}

type searchProgressEvent struct {
	RequestID string                 `json:"request_id"`
	Type      string                 `json:"type"` // source, done, error
	Source    *scraper.SourceResult  `json:"source,omitempty"`
	Leads     []scraper.Listing      `json:"leads,omitempty"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// HandleSearchProgressWS runs a search over a websocket, streaming one
// event per settled source before the final lead list. The quota check
// happens before any source is contacted, same as the HTTP path.
func (sc *SearchController) HandleSearchProgressWS(conn *websocket.Conn) {
	defer conn.Close()

	userID, ok := conn.Locals("userID").(uint)
	if !ok || userID == 0 {
		conn.WriteJSON(fiber.Map{"error": "unauthorized"})
		return
	}

	var req SearchRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(fiber.Map{"error": "invalid search request"})
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		conn.WriteJSON(fiber.Map{"error": err.Error()})
		return
	}

	requestID := uuid.NewString()

	result := sc.Enforcer.Enforce(userID, models.FeatureLeadSearch, map[string]interface{}{
		"city":      req.City,
		"transport": "websocket",
	})
	if !result.Success {
		conn.WriteJSON(searchProgressEvent{
			RequestID: requestID,
			Type:      "error",
			Extra: map[string]interface{}{
				"code":    result.StatusCode,
				"message": result.Message,
			},
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	// websocket writes are not concurrency-safe, serialize them
	events := make(chan scraper.SourceResult, len(scraper.AllSources()))
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for res := range events {
			res := res
			conn.WriteJSON(searchProgressEvent{
				RequestID: requestID,
				Type:      "source",
				Source:    &res,
			})
		}
	}()

	leads, _ := sc.Pool.Search(ctx, req.toParams(), func(res scraper.SourceResult) {
		events <- res
	})
	close(events)
	<-drained

	conn.WriteJSON(searchProgressEvent{
		RequestID: requestID,
		Type:      "done",
		Leads:     leads,
	})
}
