package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	domainerrors "github.com/mommylounge/lounge-server/internal/errors"
)

// wrapErr converts a driver error into a DEPENDENCY_FAILURE domain error.
// Domain errors and context errors pass through unchanged.
func wrapErr(err error, op string) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return domainerrors.DependencyFailure(err, "document store unavailable during "+op)
}

// isNoDocuments reports whether err means a single-document lookup found nothing.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}
