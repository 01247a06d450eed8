package usage

import (
	"errors"
	"testing"

	"dealflow/models"

	"github.com/stretchr/testify/assert"
)

func newEnforcer(store *fakeStore) *Enforcer {
	logger := quietLogger()
	return NewEnforcer(NewChecker(store, logger), store, logger)
}

func TestEnforce(t *testing.T) {
	t.Run("Free tier consumes its full quota then is cut off", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		enforcer := newEnforcer(store)

		// free analyze quota is 5
		for i := 1; i <= 5; i++ {
			result := enforcer.Enforce(1, models.FeatureAnalyze, nil)
			assert.True(t, result.Success, "call %d should pass", i)
			assert.Equal(t, StatusOK, result.StatusCode)
			assert.Equal(t, int64(i), result.CurrentUsage)
		}

		result := enforcer.Enforce(1, models.FeatureAnalyze, nil)
		assert.False(t, result.Success)
		assert.Equal(t, StatusUsageLimitReached, result.StatusCode)
		assert.Equal(t, int64(5), result.CurrentUsage)
		assert.Equal(t, int64(5), result.Limit)
		assert.NotEmpty(t, result.Message)

		// the rejected call must not have written a record
		assert.Len(t, store.records, 5)
	})

	t.Run("Rejected action writes nothing", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureOffer, 3)
		enforcer := newEnforcer(store)

		result := enforcer.Enforce(1, models.FeatureOffer, nil)

		assert.False(t, result.Success)
		assert.Len(t, store.records, 3)
	})

	t.Run("Paid tier is never blocked", func(t *testing.T) {
		store := &fakeStore{tier: models.TierEnterprise}
		enforcer := newEnforcer(store)

		for i := 0; i < 50; i++ {
			result := enforcer.Enforce(1, models.FeatureLeadSearch, nil)
			assert.True(t, result.Success)
			assert.Equal(t, Unlimited, result.Limit)
		}
		assert.Len(t, store.records, 50)
	})

	t.Run("Metadata is stored with the record", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		enforcer := newEnforcer(store)

		result := enforcer.Enforce(1, models.FeatureLeadSearch, map[string]interface{}{
			"city": "austin",
		})

		assert.True(t, result.Success)
		assert.Len(t, store.records, 1)
		assert.JSONEq(t, `{"city":"austin"}`, string(store.records[0].Metadata))
	})

	t.Run("Record failure reports internal error", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree, recordErr: errors.New("db down")}
		enforcer := newEnforcer(store)

		result := enforcer.Enforce(1, models.FeatureAnalyze, nil)

		assert.False(t, result.Success)
		assert.Equal(t, StatusInternal, result.StatusCode)
	})

	t.Run("Features are metered independently", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 5)
		enforcer := newEnforcer(store)

		// analyze is exhausted but offer still has quota
		analyze := enforcer.Enforce(1, models.FeatureAnalyze, nil)
		offer := enforcer.Enforce(1, models.FeatureOffer, nil)

		assert.False(t, analyze.Success)
		assert.True(t, offer.Success)
	})

	t.Run("Users are metered independently", func(t *testing.T) {
		store := &fakeStore{tier: models.TierFree}
		seedRecords(store, 1, models.FeatureAnalyze, 5)
		enforcer := newEnforcer(store)

		result := enforcer.Enforce(2, models.FeatureAnalyze, nil)

		assert.True(t, result.Success)
	})
}
