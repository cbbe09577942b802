package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

func isStoreNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// translate maps store failures onto domain errors. NotFound errors carry the key that
// was looked up so callers can echo it back.
func translate(err error, kind domain.Kind, id domain.Identity) error {
	if err == nil {
		return nil
	}

	prefix := strings.ToUpper(string(kind))

	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NewNotFoundError(
			prefix+"_NOT_FOUND",
			fmt.Sprintf("%s %s not found", kind, id.ID),
			map[string]interface{}{"id": id.ID, "partitionKey": id.PartitionKey},
		)
	case errors.Is(err, store.ErrConflict):
		return domain.NewConflictError(
			prefix+"_ALREADY_EXISTS",
			fmt.Sprintf("%s %s already exists", kind, id.ID),
		).WithDetail("id", id.ID).WithDetail("partitionKey", id.PartitionKey)
	case errors.Is(err, store.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return domain.NewStoreUnavailableError("STORE_UNAVAILABLE", "Document store is unavailable", err)
	case errors.Is(err, store.ErrInvalidDocument), errors.Is(err, store.ErrPartitionKeyMismatch):
		return domain.NewInternalError("INVALID_DOCUMENT", fmt.Sprintf("Invalid %s document", kind), err)
	default:
		return err
	}
}
