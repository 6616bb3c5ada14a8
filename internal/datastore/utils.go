package datastore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// CancellationResult holds information about context cancellation
type CancellationResult struct {
	Cancelled bool
	Error     error
}

// CheckCancellationWithLog checks if context is cancelled and logs the event
func CheckCancellationWithLog(ctx context.Context, logger zerolog.Logger, operation string) CancellationResult {
	select {
	case <-ctx.Done():
		err := ctx.Err()
		logger.Info().Err(err).Str("operation", operation).Msg("Context cancelled")
		return CancellationResult{
			Cancelled: true,
			Error:     fmt.Errorf("%s cancelled: %w", operation, err),
		}
	default:
		return CancellationResult{Cancelled: false}
	}
}

// StringPtrOrNil converts string to pointer, or nil if string is empty
func StringPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Float64PtrOrNilZero converts float64 to pointer, or nil if value is 0
func Float64PtrOrNilZero(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
