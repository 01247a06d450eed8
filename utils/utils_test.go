package utils

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("Postgres unique violation", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_crm_user_address"}
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("Wrapped unique violation", func(t *testing.T) {
		err := fmt.Errorf("create lead: %w", &pgconn.PgError{Code: "23505"})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("Other postgres error", func(t *testing.T) {
		err := &pgconn.PgError{Code: "23503"} // foreign key violation
		assert.False(t, IsUniqueViolation(err))
	})

	t.Run("Non-postgres error", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(errors.New("boom")))
		assert.False(t, IsUniqueViolation(nil))
	})
}

func TestStartOfMonth(t *testing.T) {
	t.Run("Mid-month timestamp", func(t *testing.T) {
		in := time.Date(2026, time.March, 17, 15, 4, 5, 0, time.UTC)
		assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(in))
	})

	t.Run("First instant of the month maps to itself", func(t *testing.T) {
		in := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, in, StartOfMonth(in))
	})

	t.Run("Non-UTC input is converted before truncation", func(t *testing.T) {
		loc := time.FixedZone("UTC+10", 10*60*60)
		// 03:00 on April 1st in UTC+10 is still March 31st in UTC
		in := time.Date(2026, time.April, 1, 3, 0, 0, 0, loc)
		assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(in))
	})
}

func TestGenerateRateLimitKey(t *testing.T) {
	assert.Equal(t, "rl:42:/api/v1/search", GenerateRateLimitKey(42, "/api/v1/search"))
}

func TestParseUint(t *testing.T) {
	assert.Equal(t, uint(123), ParseUint("123"))
	assert.Equal(t, uint(0), ParseUint("not-a-number"))
	assert.Equal(t, uint(0), ParseUint("-5"))
}
