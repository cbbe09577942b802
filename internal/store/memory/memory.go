// Package memory provides an in-process store backend used by tests and the
// "memory" store backend of the server.
package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// Provider keeps every container in process memory.
type Provider struct {
	mu         sync.Mutex
	containers map[string]*Container
	closed     bool
}

// NewProvider creates an empty in-memory backend.
func NewProvider() *Provider {
	return &Provider{containers: make(map[string]*Container)}
}

// Name returns the backend name.
func (p *Provider) Name() string { return "memory" }

// EnsureContainer returns the named container, creating it on first use. Asking for an
// existing container with a different partition key path is an error.
func (p *Provider) EnsureContainer(_ context.Context, spec store.ContainerSpec) (store.Container, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, store.ErrUnavailable
	}

	if existing, ok := p.containers[spec.Name]; ok {
		if existing.spec.PartitionKeyPath != spec.PartitionKeyPath {
			return nil, fmt.Errorf("container %s already partitioned by %s", spec.Name, existing.spec.PartitionKeyPath)
		}
		return existing, nil
	}

	c := &Container{spec: spec, docs: make(map[string]entry)}
	p.containers[spec.Name] = c
	return c, nil
}

// Ping reports whether the provider is still open.
func (p *Provider) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return store.ErrUnavailable
	}
	return nil
}

// Close marks the provider closed; later pings fail.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type entry struct {
	raw    json.RawMessage
	fields map[string]interface{}
	seq    uint64
}

// Container is an in-memory partitioned container.
type Container struct {
	mu   sync.RWMutex
	spec store.ContainerSpec
	docs map[string]entry
	seq  uint64
}

func key(id, partitionKey string) string {
	return partitionKey + "\x00" + id
}

// Spec returns the container declaration.
func (c *Container) Spec() store.ContainerSpec { return c.spec }

// Query returns copies of every matching document.
func (c *Container) Query(ctx context.Context, q store.Query) ([]json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filters, err := normalizeFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	matched := make([]entry, 0, len(c.docs))
	for _, e := range c.docs {
		if matches(e.fields, filters) {
			matched = append(matched, e)
		}
	}
	c.mu.RUnlock()

	// Insertion order is the tiebreaker so results are deterministic.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].seq < matched[j].seq })
	if q.OrderBy != nil {
		field, desc := q.OrderBy.Field, q.OrderBy.Descending
		sort.SliceStable(matched, func(i, j int) bool {
			cmp := compare(matched[i].fields[field], matched[j].fields[field])
			if desc {
				return cmp > 0
			}
			return cmp < 0
		})
	}

	out := make([]json.RawMessage, len(matched))
	for i, e := range matched {
		out[i] = clone(e.raw)
	}
	return out, nil
}

// Get returns a copy of one document.
func (c *Container) Get(ctx context.Context, id, partitionKey string) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.docs[key(id, partitionKey)]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(e.raw), nil
}

// Add inserts a new document.
func (c *Container) Add(ctx context.Context, doc json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id, partitionKey, err := store.DocumentKey(c.spec, doc)
	if err != nil {
		return err
	}
	e, err := newEntry(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(id, partitionKey)
	if _, exists := c.docs[k]; exists {
		return store.ErrConflict
	}
	c.seq++
	e.seq = c.seq
	c.docs[k] = e
	return nil
}

// Replace overwrites an existing document.
func (c *Container) Replace(ctx context.Context, id, partitionKey string, doc json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckAddressedDocument(c.spec, id, partitionKey, doc); err != nil {
		return err
	}
	e, err := newEntry(doc)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(id, partitionKey)
	existing, ok := c.docs[k]
	if !ok {
		return store.ErrNotFound
	}
	e.seq = existing.seq
	c.docs[k] = e
	return nil
}

// Remove deletes one document.
func (c *Container) Remove(ctx context.Context, id, partitionKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	k := key(id, partitionKey)
	if _, ok := c.docs[k]; !ok {
		return store.ErrNotFound
	}
	delete(c.docs, k)
	return nil
}

func newEntry(doc json.RawMessage) (entry, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return entry{}, fmt.Errorf("%w: %v", store.ErrInvalidDocument, err)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, doc); err != nil {
		return entry{}, fmt.Errorf("%w: %v", store.ErrInvalidDocument, err)
	}
	return entry{raw: compact.Bytes(), fields: fields}, nil
}

func clone(raw json.RawMessage) json.RawMessage {
	out := make(json.RawMessage, len(raw))
	copy(out, raw)
	return out
}

// normalizeFilters round-trips filter values through JSON so they compare equal to
// decoded document fields.
func normalizeFilters(filters []store.Filter) ([]store.Filter, error) {
	out := make([]store.Filter, len(filters))
	for i, f := range filters {
		data, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}
		var v interface{}
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("filter %s: %w", f.Field, err)
		}
		out[i] = store.Filter{Field: f.Field, Value: v}
	}
	return out, nil
}

func matches(fields map[string]interface{}, filters []store.Filter) bool {
	for _, f := range filters {
		v, ok := fields[f.Field]
		if !ok || !reflect.DeepEqual(v, f.Value) {
			return false
		}
	}
	return true
}

// compare orders missing values first, then numbers, then strings.
func compare(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
	case bool:
		bv := b.(bool)
		if av != bv {
			if !av {
				return -1
			}
			return 1
		}
	}
	return 0
}

func rank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}
