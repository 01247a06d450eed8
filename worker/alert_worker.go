package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"dealflow/models"
	"dealflow/scraper"

	"gorm.io/gorm"
)

// alertInterval is how often a saved search is re-run for email alerts
const alertInterval = 24 * time.Hour

type AlertWorker struct {
	DB     *gorm.DB
	Pool   *scraper.Pool
	Mailer *AlertMailer
	Logger *log.Logger
}

func NewAlertWorker(db *gorm.DB, pool *scraper.Pool, mailer *AlertMailer, logger *log.Logger) *AlertWorker {
	return &AlertWorker{
		DB:     db,
		Pool:   pool,
		Mailer: mailer,
		Logger: logger,
	}
}

func (aw *AlertWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	aw.Logger.Println("Alert worker started")

	ticker := time.NewTicker(15 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			aw.Logger.Println("Alert worker shutting down...")
			return
		case <-ticker.C:
			aw.processDueSearches(ctx)
		}
	}
}

func (aw *AlertWorker) processDueSearches(ctx context.Context) {
	cutoff := time.Now().Add(-alertInterval)

	var searches []models.SavedSearch
	err := aw.DB.Preload("User").
		Where("enabled = ? AND email_alert_enabled = ?", true, true).
		Where("last_run_at IS NULL OR last_run_at < ?", cutoff).
		Find(&searches).Error
	if err != nil {
		aw.Logger.Printf("Error fetching due searches: %v", err)
		return
	}

	for _, search := range searches {
		if ctx.Err() != nil {
			return
		}
		if err := aw.runSearch(ctx, search); err != nil {
			aw.Logger.Printf("Error running saved search %d: %v", search.ID, err)
		}
	}
}

func (aw *AlertWorker) runSearch(ctx context.Context, search models.SavedSearch) error {
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	params := scraper.SearchParams{
		City:           search.City,
		DaysOnMarket:   search.DaysOnMarket,
		DaysOnMarketOp: search.DaysOnMarketOp,
		PriceMin:       search.PriceMin,
		PriceMax:       search.PriceMax,
		PropertyType:   search.PropertyType,
	}
	if len(search.Sources) > 0 {
		if err := json.Unmarshal(search.Sources, &params.Sources); err != nil {
			aw.Logger.Printf("Saved search %d has malformed sources: %v", search.ID, err)
		}
	}
	if len(search.Keywords) > 0 {
		if err := json.Unmarshal(search.Keywords, &params.Keywords); err != nil {
			aw.Logger.Printf("Saved search %d has malformed keywords: %v", search.ID, err)
		}
	}

	leads, _ := aw.Pool.Search(runCtx, params, nil)

	// only alert on leads listed since the previous run
	fresh := leads
	if search.LastRunAt != nil {
		fresh = fresh[:0]
		for _, lead := range leads {
			if lead.DateListed.After(*search.LastRunAt) {
				fresh = append(fresh, lead)
			}
		}
	}

	if len(fresh) > 0 {
		if err := aw.Mailer.SendLeadAlert(search.User.Email, search.Name, fresh); err != nil {
			return err
		}
		aw.Logger.Printf("Sent %d leads for saved search %d to %s", len(fresh), search.ID, search.User.Email)
	}

	now := time.Now()
	return aw.DB.Model(&models.SavedSearch{}).
		Where("id = ?", search.ID).
		Update("last_run_at", now).Error
}
