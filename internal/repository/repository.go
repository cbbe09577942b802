// Package repository provides typed data access over the document store.
package repository

import (
	"context"
	"encoding/json"

	"github.com/ericfisherdev/simple-easy-issues/internal/domain"
	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// Entity constrains document types to pointers that know their identity.
type Entity[T any] interface {
	*T
	domain.Identifiable
}

// Repository is the generic CRUD layer shared by every typed repository. Documents of
// another kind living in the same container are never returned.
type Repository[T any, PT Entity[T]] struct {
	container store.Container
	kind      domain.Kind
}

// NewRepository binds a repository for documents of kind to a container.
func NewRepository[T any, PT Entity[T]](container store.Container, kind domain.Kind) *Repository[T, PT] {
	return &Repository[T, PT]{container: container, kind: kind}
}

// Kind returns the document kind served by the repository.
func (r *Repository[T, PT]) Kind() domain.Kind {
	return r.kind
}

// GetAll returns every document of the repository kind.
func (r *Repository[T, PT]) GetAll(ctx context.Context, order *store.OrderBy) ([]PT, error) {
	return r.Query(ctx, nil, order)
}

// Query returns the documents matching every filter, in the requested order.
func (r *Repository[T, PT]) Query(ctx context.Context, filters []store.Filter, order *store.OrderBy) ([]PT, error) {
	q := store.Query{
		Filters: append([]store.Filter{store.Eq("type", string(r.kind))}, filters...),
		OrderBy: order,
	}

	docs, err := r.container.Query(ctx, q)
	if err != nil {
		return nil, translate(err, r.kind, domain.Identity{})
	}

	out := make([]PT, 0, len(docs))
	for _, doc := range docs {
		entity, err := r.decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

// GetByID returns the document at id, or nil when it does not exist.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id domain.Identity) (PT, error) {
	doc, err := r.container.Get(ctx, id.ID, id.PartitionKey)
	if err != nil {
		if isStoreNotFound(err) {
			return nil, nil
		}
		return nil, translate(err, r.kind, id)
	}

	var header struct {
		Type domain.Kind `json:"type"`
	}
	if err := json.Unmarshal(doc, &header); err != nil || header.Type != r.kind {
		return nil, nil
	}
	return r.decode(doc)
}

// Add inserts a new document.
func (r *Repository[T, PT]) Add(ctx context.Context, entity PT) error {
	doc, err := json.Marshal(entity)
	if err != nil {
		return domain.NewInternalError("ENCODE_FAILED", "Failed to encode "+string(r.kind), err)
	}
	if err := r.container.Add(ctx, doc); err != nil {
		return translate(err, r.kind, entity.Identity())
	}
	return nil
}

// Replace overwrites the stored document with entity.
func (r *Repository[T, PT]) Replace(ctx context.Context, entity PT) error {
	doc, err := json.Marshal(entity)
	if err != nil {
		return domain.NewInternalError("ENCODE_FAILED", "Failed to encode "+string(r.kind), err)
	}
	id := entity.Identity()
	if err := r.container.Replace(ctx, id.ID, id.PartitionKey, doc); err != nil {
		return translate(err, r.kind, id)
	}
	return nil
}

// Remove deletes the document at id.
func (r *Repository[T, PT]) Remove(ctx context.Context, id domain.Identity) error {
	if err := r.container.Remove(ctx, id.ID, id.PartitionKey); err != nil {
		return translate(err, r.kind, id)
	}
	return nil
}

func (r *Repository[T, PT]) decode(doc json.RawMessage) (PT, error) {
	entity := PT(new(T))
	if err := json.Unmarshal(doc, entity); err != nil {
		return nil, domain.NewInternalError("DECODE_FAILED", "Failed to decode "+string(r.kind), err)
	}
	return entity, nil
}
