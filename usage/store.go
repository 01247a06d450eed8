package usage

import (
	"time"

	"dealflow/models"

	"gorm.io/gorm"
)

// Store is the persistence boundary for entitlement checks. Keeping it
// narrow lets the checker and enforcer run against a fake in tests.
type Store interface {
	// TierFor resolves the effective subscription tier for a user
	TierFor(userID uint) (string, error)
	// CountSince counts usage records for (user, feature) created at or after since
	CountSince(userID uint, feature string, since time.Time) (int64, error)
	// Record appends one usage record
	Record(record *models.UsageRecord) error
	// ActiveDays returns the distinct UTC dates (YYYY-MM-DD) with at
	// least one usage record since the given time
	ActiveDays(userID uint, since time.Time) ([]string, error)
}

// GormStore implements Store on the application database
type GormStore struct {
	DB *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) TierFor(userID uint) (string, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return "", err
	}
	return user.EffectiveTier(), nil
}

func (s *GormStore) CountSince(userID uint, feature string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.Model(&models.UsageRecord{}).
		Where("user_id = ? AND feature = ? AND created_at >= ?", userID, feature, since).
		Count(&count).Error
	return count, err
}

func (s *GormStore) Record(record *models.UsageRecord) error {
	return s.DB.Create(record).Error
}

func (s *GormStore) ActiveDays(userID uint, since time.Time) ([]string, error) {
	var days []string
	err := s.DB.Model(&models.UsageRecord{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Distinct().
		Order("day DESC").
		Pluck("to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day", &days).Error
	return days, err
}
