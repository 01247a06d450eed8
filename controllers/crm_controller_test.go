package controller

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealflow/models"
	"dealflow/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeadStore struct {
	createErr error
	existing  *models.CrmLead
	findErr   error
	created   []*models.CrmLead
}

func (s *fakeLeadStore) Create(lead *models.CrmLead) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, lead)
	return nil
}

func (s *fakeLeadStore) FindExisting(userID uint, propertyID *string, normalizedAddress string) (*models.CrmLead, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.existing, nil
}

type fakeEnricher struct {
	details *utils.PropertyDetails
	err     error
}

func (e *fakeEnricher) FetchDetails(address string) (*utils.PropertyDetails, error) {
	return e.details, e.err
}

func saveLeadApp(store *fakeLeadStore, enricher *fakeEnricher) *fiber.App {
	cc := &CrmController{
		Store:    store,
		Enricher: enricher,
		Logger:   log.New(io.Discard, "", 0),
	}
	app := fiber.New()
	app.Post("/leads", func(c *fiber.Ctx) error {
		c.Locals("user", &models.User{Model: gorm.Model{ID: 1}})
		return cc.SaveLead(c)
	})
	return app
}

func postLead(t *testing.T, app *fiber.App, payload map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/leads", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	defer resp.Body.Close()
	var body map[string]interface{}
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSaveLead(t *testing.T) {
	leadPayload := map[string]interface{}{
		"address": "123 North Main Street",
		"city":    "Austin",
		"state":   "TX",
		"price":   250000,
	}

	t.Run("First save creates a normalized lead", func(t *testing.T) {
		store := &fakeLeadStore{}
		app := saveLeadApp(store, &fakeEnricher{err: errors.New("provider down")})

		status, body := postLead(t, app, leadPayload)

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Equal(t, true, body["success"])
		assert.Len(t, store.created, 1)
		assert.Equal(t, "123 n main st", store.created[0].NormalizedAddress)
		assert.Equal(t, models.LeadStatusNew, store.created[0].Status)
	})

	t.Run("Duplicate returns conflict carrying the existing row id", func(t *testing.T) {
		store := &fakeLeadStore{
			createErr: &pgconn.PgError{Code: "23505"},
			existing:  &models.CrmLead{Model: gorm.Model{ID: 7}},
		}
		app := saveLeadApp(store, &fakeEnricher{err: errors.New("provider down")})

		status, body := postLead(t, app, leadPayload)

		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, utils.CodeAlreadyExists, body["code"])
		assert.Equal(t, float64(7), body["id"])
	})

	t.Run("Duplicate without a recoverable row still conflicts", func(t *testing.T) {
		store := &fakeLeadStore{
			createErr: &pgconn.PgError{Code: "23505"},
			findErr:   gorm.ErrRecordNotFound,
		}
		app := saveLeadApp(store, &fakeEnricher{err: errors.New("provider down")})

		status, body := postLead(t, app, leadPayload)

		assert.Equal(t, fiber.StatusConflict, status)
		assert.Equal(t, utils.CodeAlreadyExists, body["code"])
		assert.NotContains(t, body, "id")
	})

	t.Run("Non-duplicate insert failure is an internal error", func(t *testing.T) {
		store := &fakeLeadStore{createErr: errors.New("connection reset")}
		app := saveLeadApp(store, &fakeEnricher{err: errors.New("provider down")})

		status, body := postLead(t, app, leadPayload)

		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, false, body["success"])
	})

	t.Run("Enrichment details are attached when the provider answers", func(t *testing.T) {
		store := &fakeLeadStore{}
		app := saveLeadApp(store, &fakeEnricher{details: &utils.PropertyDetails{EstimatedValue: 310000, YearBuilt: 1987}})

		status, _ := postLead(t, app, leadPayload)

		assert.Equal(t, fiber.StatusCreated, status)
		assert.Len(t, store.created, 1)
		assert.JSONEq(t,
			`{"estimated_value":310000,"last_sale_price":0,"last_sale_date":"","year_built":1987,"square_feet":0,"bedrooms":0,"bathrooms":0,"lot_size":0,"owner_name":"","zoning":""}`,
			string(store.created[0].Enrichment))
	})

	t.Run("Missing address fails validation", func(t *testing.T) {
		store := &fakeLeadStore{}
		app := saveLeadApp(store, &fakeEnricher{err: errors.New("provider down")})

		status, body := postLead(t, app, map[string]interface{}{"city": "Austin"})

		assert.Equal(t, fiber.StatusBadRequest, status)
		assert.Equal(t, false, body["success"])
		assert.Empty(t, store.created)
	})
}

func TestEnabledMessage(t *testing.T) {
	assert.Equal(t, "Saved search resumed", enabledMessage(true))
	assert.Equal(t, "Saved search paused", enabledMessage(false))
}
