package service

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "hearth/pkg/errors"
)

// storeError classifies a repository failure. Timeouts and broken
// connections surface as transient StorageUnavailable so the caller knows a
// retry may succeed; everything else is internal.
func storeError(message string, err error) *apperrors.AppError {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return apperrors.Unavailable("booking store", err)
	}
	return apperrors.Internal(message, err)
}
