package services

import (
	"fmt"
	"strings"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
)

// notFound reports an absent document, echoing the key that was looked up.
func notFound(kind domain.Kind, id domain.Identity) error {
	return domain.NewNotFoundError(
		strings.ToUpper(string(kind))+"_NOT_FOUND",
		fmt.Sprintf("%s %s not found", kind, id.ID),
		map[string]interface{}{"id": id.ID, "partitionKey": id.PartitionKey},
	)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(
			"INVALID_"+strings.ToUpper(field),
			fmt.Sprintf("%s cannot be empty", field),
			map[string]interface{}{"field": field},
		)
	}
	return nil
}
