package usage

import (
	"time"

	"dealflow/models"
	"dealflow/utils"
)

// featurePoints weight each recorded action for the gamified score
var featurePoints = map[string]int64{
	models.FeatureAnalyze:    10,
	models.FeatureOffer:      25,
	models.FeatureCSVImport:  5,
	models.FeatureLeadSearch: 5,
}

// FeatureUsage is the display payload for one feature
type FeatureUsage struct {
	CurrentUsage int64   `json:"current_usage"`
	Limit        int64   `json:"limit"` // -1 means unlimited
	Percentage   float64 `json:"percentage"`
}

// Summary aggregates a user's usage for UI display. Not used for
// enforcement.
type Summary struct {
	Features map[string]FeatureUsage `json:"features"`
	Points   int64                   `json:"points"`
	Streak   int                     `json:"streak"` // consecutive active days ending today
}

// Reporter builds usage summaries
type Reporter struct {
	checker *Checker
	store   Store
	now     func() time.Time
}

func NewReporter(checker *Checker, store Store) *Reporter {
	return &Reporter{
		checker: checker,
		store:   store,
		now:     time.Now,
	}
}

// Summarize reports per-feature usage for every known feature. Features
// with no data report zero usage; store errors degrade to zeros rather
// than failing the whole summary.
func (r *Reporter) Summarize(userID uint) Summary {
	summary := Summary{Features: make(map[string]FeatureUsage, len(models.AllFeatures()))}
	monthStart := utils.StartOfMonth(r.now())

	for _, feature := range models.AllFeatures() {
		status := r.checker.CheckLimit(userID, feature)

		current := status.CurrentUsage
		if status.Limit == Unlimited {
			// the checker short-circuits paid tiers without counting
			if count, err := r.store.CountSince(userID, feature, monthStart); err == nil {
				current = count
			}
		}

		usage := FeatureUsage{CurrentUsage: current, Limit: status.Limit}
		if status.Limit > 0 {
			usage.Percentage = float64(current) / float64(status.Limit) * 100
			if usage.Percentage > 100 {
				usage.Percentage = 100
			}
		}
		summary.Features[feature] = usage
		summary.Points += featurePoints[feature] * current
	}

	summary.Streak = r.streak(userID)
	return summary
}

// streak counts consecutive UTC days with activity, ending today or
// yesterday (a streak is not broken until a full day is missed).
func (r *Reporter) streak(userID uint) int {
	since := r.now().UTC().AddDate(0, 0, -90)
	days, err := r.store.ActiveDays(userID, since)
	if err != nil || len(days) == 0 {
		return 0
	}

	active := make(map[string]bool, len(days))
	for _, day := range days {
		active[day] = true
	}

	cursor := r.now().UTC()
	today := cursor.Format("2006-01-02")
	if !active[today] {
		cursor = cursor.AddDate(0, 0, -1)
		if !active[cursor.Format("2006-01-02")] {
			return 0
		}
	}

	streak := 0
	for active[cursor.Format("2006-01-02")] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}
