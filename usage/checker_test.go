package usage

import (
	"errors"
	"io"
	"testing"
	"time"

	"dealflow/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory Store for exercising the quota pipeline
// without a database.
type fakeStore struct {
	tier       string
	tierErr    error
	records    []*models.UsageRecord
	countErr   error
	recordErr  error
	activeDays []string
	daysErr    error
}

func (f *fakeStore) TierFor(userID uint) (string, error) {
	if f.tierErr != nil {
		return "", f.tierErr
	}
	return f.tier, nil
}

func (f *fakeStore) CountSince(userID uint, feature string, since time.Time) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var count int64
	for _, r := range f.records {
		if r.UserID == userID && r.Feature == feature && !r.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) Record(record *models.UsageRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	record.CreatedAt = time.Now()
	f.records = append(f.records, record)
	return nil
}

func (f *fakeStore) ActiveDays(userID uint, since time.Time) ([]string, error) {
	if f.daysErr != nil {
		return nil, f.daysErr
	}
	return f.activeDays, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedRecords(store *fakeStore, userID uint, feature string, n int) {
	for i := 0; i < n; i++ {
		store.records = append(store.records, &models.UsageRecord{
			UserID:    userID,
			Feature:   feature,
			CreatedAt: time.Now(),
		})
	}
}

func TestCheckLimit(t *testing.T) {
	t.Run("Free tier under quota", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 3)
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureAnalyze)

		assert.False(t, status.HasReachedLimit)
		assert.Equal(t, int64(3), status.CurrentUsage)
		assert.Equal(t, int64(5), status.Limit)
	})

	t.Run("Free tier at quota is denied", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 5)
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureAnalyze)

		assert.True(t, status.HasReachedLimit)
		assert.Equal(t, int64(5), status.CurrentUsage)
	})

	t.Run("Usage outside the current month is not counted", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		store.records = append(store.records, &models.UsageRecord{
			UserID:    1,
			Feature:   models.FeatureAnalyze,
			CreatedAt: time.Now().AddDate(0, -2, 0),
		})
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureAnalyze)

		assert.False(t, status.HasReachedLimit)
		assert.Equal(t, int64(0), status.CurrentUsage)
	})

	t.Run("Paid tier is unlimited without counting", func(t *testing.T) {
		store := &fakeStore{tier: models.TierPro, countErr: errors.New("must not be called")}
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureAnalyze)

		assert.False(t, status.HasReachedLimit)
		assert.Equal(t, Unlimited, status.Limit)
	})

	t.Run("Unknown caller fails closed", func(t *testing.T) {
		store := &fakeStore{tier: models.TierPro}
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(0, models.FeatureAnalyze)

		assert.True(t, status.HasReachedLimit)
	})

	t.Run("Tier lookup failure falls back to free quota", func(t *testing.T) {
		store := &fakeStore{tierErr: errors.New("db down")}
		seedRecords(store, 1, models.FeatureOffer, 3)
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureOffer)

		assert.True(t, status.HasReachedLimit)
		assert.Equal(t, int64(3), status.Limit) // free offer quota
	})

	t.Run("Unknown feature fails closed", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, "teleport")

		assert.True(t, status.HasReachedLimit)
	})

	t.Run("Count failure fails closed", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, countErr: errors.New("db down")}
		checker := NewChecker(store, quietLogger())

		status := checker.CheckLimit(1, models.FeatureAnalyze)

		assert.True(t, status.HasReachedLimit)
	})
}
