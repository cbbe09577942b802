// Package store defines the partitioned document store contract and the client that
// opens the database and its containers.
//
// A container holds JSON documents addressed by (id, partitionKey). The partition key of
// a document is read from the path declared when the container was created, so a
// container cannot silently change how its documents are partitioned.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNotFound is returned by point operations whose target does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict is returned when an insert collides with an existing (id, partitionKey).
	ErrConflict = errors.New("document already exists")
	// ErrUnavailable is returned when the store cannot be reached or a call times out.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrPartitionKeyMismatch is returned when a document's partition key differs from the addressed one.
	ErrPartitionKeyMismatch = errors.New("partition key mismatch")
	// ErrInvalidDocument is returned for documents without an id or a partition key.
	ErrInvalidDocument = errors.New("invalid document")
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ContainerSpec declares a container and its partition key path, e.g. "/userId".
type ContainerSpec struct {
	Name             string
	PartitionKeyPath string
}

// Field returns the top-level document field named by the partition key path.
func (s ContainerSpec) Field() string {
	return strings.TrimPrefix(s.PartitionKeyPath, "/")
}

// Validate checks the container name and partition key path.
func (s ContainerSpec) Validate() error {
	if !fieldNamePattern.MatchString(s.Name) {
		return fmt.Errorf("invalid container name %q", s.Name)
	}
	if !strings.HasPrefix(s.PartitionKeyPath, "/") || !fieldNamePattern.MatchString(s.Field()) {
		return fmt.Errorf("invalid partition key path %q for container %s", s.PartitionKeyPath, s.Name)
	}
	return nil
}

// Filter is an equality predicate on a top-level document field.
type Filter struct {
	Field string
	Value interface{}
}

// Eq builds an equality filter.
func Eq(field string, value interface{}) Filter {
	return Filter{Field: field, Value: value}
}

// OrderBy orders query results by a top-level document field.
type OrderBy struct {
	Field      string
	Descending bool
}

// Asc orders ascending by field.
func Asc(field string) *OrderBy {
	return &OrderBy{Field: field}
}

// Desc orders descending by field.
func Desc(field string) *OrderBy {
	return &OrderBy{Field: field, Descending: true}
}

// Query is a scan over a container. Filters are combined with AND. A nil OrderBy leaves
// the order unspecified.
type Query struct {
	Filters []Filter
	OrderBy *OrderBy
}

// Validate rejects field names that are not plain identifiers.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !fieldNamePattern.MatchString(f.Field) {
			return fmt.Errorf("invalid filter field %q", f.Field)
		}
	}
	if q.OrderBy != nil && !fieldNamePattern.MatchString(q.OrderBy.Field) {
		return fmt.Errorf("invalid order field %q", q.OrderBy.Field)
	}
	return nil
}

// Container is one partitioned collection of JSON documents.
type Container interface {
	// Spec returns the container declaration
	Spec() ContainerSpec

	// Query scans the container, returning every matching document
	Query(ctx context.Context, q Query) ([]json.RawMessage, error)

	// Get reads one document; ErrNotFound when absent
	Get(ctx context.Context, id, partitionKey string) (json.RawMessage, error)

	// Add inserts a document; ErrConflict when (id, partitionKey) exists
	Add(ctx context.Context, doc json.RawMessage) error

	// Replace overwrites the whole document at (id, partitionKey); ErrNotFound when absent
	Replace(ctx context.Context, id, partitionKey string, doc json.RawMessage) error

	// Remove deletes one document; ErrNotFound when absent
	Remove(ctx context.Context, id, partitionKey string) error
}

// Provider is a store backend able to create containers idempotently.
type Provider interface {
	// Name identifies the backend in logs and health checks
	Name() string

	// EnsureContainer returns the container, creating it when missing
	EnsureContainer(ctx context.Context, spec ContainerSpec) (Container, error)

	// Ping verifies the backend is reachable
	Ping(ctx context.Context) error

	// Close releases backend resources
	Close() error
}

// DocumentKey extracts the id and the partition key of a document using spec.
func DocumentKey(spec ContainerSpec, doc json.RawMessage) (id, partitionKey string, err error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(doc, &fields); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	id, err = stringField(fields, "id")
	if err != nil {
		return "", "", err
	}
	partitionKey, err = stringField(fields, spec.Field())
	if err != nil {
		return "", "", err
	}
	return id, partitionKey, nil
}

func stringField(fields map[string]json.RawMessage, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidDocument, name)
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil || value == "" {
		return "", fmt.Errorf("%w: field %q must be a non-empty string", ErrInvalidDocument, name)
	}
	return value, nil
}

// CheckAddressedDocument verifies that doc lives at (id, partitionKey).
func CheckAddressedDocument(spec ContainerSpec, id, partitionKey string, doc json.RawMessage) error {
	docID, docPK, err := DocumentKey(spec, doc)
	if err != nil {
		return err
	}
	if docID != id {
		return fmt.Errorf("%w: document id %q does not match %q", ErrInvalidDocument, docID, id)
	}
	if docPK != partitionKey {
		return fmt.Errorf("%w: document has %q, addressed %q", ErrPartitionKeyMismatch, docPK, partitionKey)
	}
	return nil
}
