package pocketbase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// Container stores documents as records of one PocketBase collection.
type Container struct {
	app        core.App
	spec       store.ContainerSpec
	collection string
}

// Spec returns the container declaration.
func (c *Container) Spec() store.ContainerSpec { return c.spec }

// Query translates equality filters and ordering into json_extract expressions.
func (c *Container) Query(ctx context.Context, q store.Query) ([]json.RawMessage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	query := c.app.RecordQuery(c.collection)
	for i, f := range q.Filters {
		pathParam := fmt.Sprintf("f%dp", i)
		valueParam := fmt.Sprintf("f%dv", i)
		query = query.AndWhere(dbx.NewExp(
			fmt.Sprintf("json_extract([[%s]], {:%s}) = {:%s}", FieldDocument, pathParam, valueParam),
			dbx.Params{pathParam: "$." + f.Field, valueParam: sqlValue(f.Value)},
		))
	}

	if q.OrderBy != nil {
		direction := "ASC"
		if q.OrderBy.Descending {
			direction = "DESC"
		}
		// Field names are validated identifiers, so inlining the path is safe.
		query = query.OrderBy(fmt.Sprintf("json_extract([[%s]], '$.%s') %s", FieldDocument, q.OrderBy.Field, direction))
	}
	query = query.AndOrderBy("[[rowid]] ASC")

	var records []*core.Record
	if err := query.WithContext(ctx).All(&records); err != nil {
		return nil, unavailable("query", err)
	}

	docs := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		doc, err := documentOf(record)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Get reads one document by (id, partitionKey).
func (c *Container) Get(ctx context.Context, id, partitionKey string) (json.RawMessage, error) {
	record, err := c.find(ctx, id, partitionKey)
	if err != nil {
		return nil, err
	}
	return documentOf(record)
}

// Add inserts a document, failing with store.ErrConflict when its key exists.
func (c *Container) Add(ctx context.Context, doc json.RawMessage) error {
	id, partitionKey, err := store.DocumentKey(c.spec, doc)
	if err != nil {
		return err
	}

	if _, err := c.find(ctx, id, partitionKey); err == nil {
		return store.ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}

	collection, err := c.app.FindCachedCollectionByNameOrId(c.collection)
	if err != nil {
		return unavailable("add", err)
	}

	record := core.NewRecord(collection)
	record.Set(FieldDocID, id)
	record.Set(FieldPartitionKey, partitionKey)
	record.Set(FieldDocument, types.JSONRaw(doc))

	if err := c.app.SaveWithContext(ctx, record); err != nil {
		// The unique index catches a concurrent insert of the same key.
		if _, findErr := c.find(ctx, id, partitionKey); findErr == nil {
			return store.ErrConflict
		}
		return unavailable("add", err)
	}
	return nil
}

// Replace overwrites the stored document.
func (c *Container) Replace(ctx context.Context, id, partitionKey string, doc json.RawMessage) error {
	if err := store.CheckAddressedDocument(c.spec, id, partitionKey, doc); err != nil {
		return err
	}

	record, err := c.find(ctx, id, partitionKey)
	if err != nil {
		return err
	}

	record.Set(FieldDocument, types.JSONRaw(doc))
	if err := c.app.SaveWithContext(ctx, record); err != nil {
		return unavailable("replace", err)
	}
	return nil
}

// Remove deletes the stored document.
func (c *Container) Remove(ctx context.Context, id, partitionKey string) error {
	record, err := c.find(ctx, id, partitionKey)
	if err != nil {
		return err
	}
	if err := c.app.DeleteWithContext(ctx, record); err != nil {
		return unavailable("remove", err)
	}
	return nil
}

func (c *Container) find(ctx context.Context, id, partitionKey string) (*core.Record, error) {
	record := &core.Record{}
	err := c.app.RecordQuery(c.collection).
		AndWhere(dbx.HashExp{FieldDocID: id, FieldPartitionKey: partitionKey}).
		Limit(1).
		WithContext(ctx).
		One(record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, unavailable("get", err)
	}
	return record, nil
}

func documentOf(record *core.Record) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := record.UnmarshalJSONField(FieldDocument, &raw); err != nil {
		return nil, fmt.Errorf("%w: record %s: %v", store.ErrInvalidDocument, record.Id, err)
	}
	return raw, nil
}

// sqlValue converts a filter value to what json_extract yields for it.
func sqlValue(v interface{}) interface{} {
	switch value := v.(type) {
	case bool:
		if value {
			return 1
		}
		return 0
	case fmt.Stringer:
		return value.String()
	default:
		return v
	}
}

func unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", store.ErrUnavailable, op, err)
}
