package usage

import (
	"errors"
	"testing"
	"time"

	"dealflow/models"

	"github.com/stretchr/testify/assert"
)

func newReporter(store *fakeStore) *Reporter {
	return NewReporter(NewChecker(store, quietLogger()), store)
}

func TestSummarize(t *testing.T) {
	t.Run("Reports every feature including unused ones", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 2)
		reporter := newReporter(store)

		summary := reporter.Summarize(1)

		assert.Len(t, summary.Features, len(models.AllFeatures()))
		assert.Equal(t, int64(2), summary.Features[models.FeatureAnalyze].CurrentUsage)
		assert.Equal(t, int64(0), summary.Features[models.FeatureOffer].CurrentUsage)
		assert.Equal(t, int64(3), summary.Features[models.FeatureOffer].Limit)
	})

	t.Run("Percentage is relative to the quota and capped", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 4)
		reporter := newReporter(store)

		summary := reporter.Summarize(1)

		assert.InDelta(t, 80.0, summary.Features[models.FeatureAnalyze].Percentage, 0.01)
	})

	t.Run("Paid tier shows counts with unlimited limit", func(t *testing.T) {
		store := &fakeStore{tier: models.TierTeam}
		seedRecords(store, 1, models.FeatureLeadSearch, 7)
		reporter := newReporter(store)

		summary := reporter.Summarize(1)

		got := summary.Features[models.FeatureLeadSearch]
		assert.Equal(t, int64(7), got.CurrentUsage)
		assert.Equal(t, Unlimited, got.Limit)
		assert.Zero(t, got.Percentage)
	})

	t.Run("Points weight features differently", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 2)  // 2 * 10
		seedRecords(store, 1, models.FeatureOffer, 1)    // 1 * 25
		seedRecords(store, 1, models.FeatureCSVImport, 1) // 1 * 5
		reporter := newReporter(store)

		summary := reporter.Summarize(1)

		assert.Equal(t, int64(50), summary.Points)
	})

	t.Run("Store failures degrade to zeros", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, countErr: errors.New("db down"), daysErr: errors.New("db down")}
		reporter := newReporter(store)

		summary := reporter.Summarize(1)

		assert.Len(t, summary.Features, len(models.AllFeatures()))
		assert.Equal(t, int64(0), summary.Points)
		assert.Equal(t, 0, summary.Streak)
	})
}

func TestStreak(t *testing.T) {
	day := func(offset int) string {
		return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
	}

	t.Run("Consecutive days ending today", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, activeDays: []string{day(0), day(-1), day(-2)}}
		reporter := newReporter(store)

		assert.Equal(t, 3, reporter.streak(1))
	})

	t.Run("Streak survives until a full day is missed", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, activeDays: []string{day(-1), day(-2)}}
		reporter := newReporter(store)

		assert.Equal(t, 2, reporter.streak(1))
	})

	t.Run("Gap breaks the streak", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, activeDays: []string{day(0), day(-2), day(-3)}}
		reporter := newReporter(store)

		assert.Equal(t, 1, reporter.streak(1))
	})

	t.Run("No recent activity", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, activeDays: []string{day(-5)}}
		reporter := newReporter(store)

		assert.Equal(t, 0, reporter.streak(1))
	})

	t.Run("No activity at all", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		reporter := newReporter(store)

		assert.Equal(t, 0, reporter.streak(1))
	})
}
