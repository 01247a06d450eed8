package utils

import (
	"context"
	"time"
)

// Retry runs fn up to attempts times, sleeping delay*attempt between
// tries (linear backoff). It returns nil on the first success and the
// last error once attempts are exhausted. A canceled context stops the
// wait early and returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay * time.Duration(attempt)):
		}
	}
	return err
}
