package utils

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
)

// Structured error codes surfaced to the client
const (
	CodeUsageLimitReached = "USAGE_LIMIT_REACHED"
	CodeAlreadyExists     = "ALREADY_EXISTS"
)

// ErrorResponse creates a standardized error response
func ErrorResponse(c *fiber.Ctx, status int, message string, err error) error {
	response := fiber.Map{
		"success": false,
		"error":   message,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	return c.Status(status).JSON(response)
}

// CodedErrorResponse creates an error response carrying a machine-readable
// code plus extra fields, so the UI can react (upgrade prompt, "already
// saved" toast) instead of showing a generic failure.
func CodedErrorResponse(c *fiber.Ctx, status int, code, message string, extra fiber.Map) error {
	response := fiber.Map{
		"success": false,
		"code":    code,
		"error":   message,
	}
	for k, v := range extra {
		response[k] = v
	}
	return c.Status(status).JSON(response)
}

// SuccessResponse creates a standardized success response
func SuccessResponse(data interface{}) fiber.Map {
	return fiber.Map{
		"success": true,
		"data":    data,
	}
}

// PaginatedResponse structure for paginated results
type PaginatedResponse struct {
	Data  interface{} `json:"data"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GenerateRateLimitKey creates a unique key for rate limiting
func GenerateRateLimitKey(userID uint, path string) string {
	return fmt.Sprintf("rl:%d:%s", userID, path)
}

// Pointer returns a pointer to the given value
func Pointer[T any](v T) *T {
	return &v
}

// ParseUint safely parses a string to uint
func ParseUint(s string) uint {
	i, _ := strconv.ParseUint(s, 10, 32)
	return uint(i)
}

// ParseInt safely parses a string to int, returning 0 on failure
func ParseInt(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

// StartOfMonth returns midnight UTC on the first day of t's month, the
// lower bound of the usage-counting window.
func StartOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
