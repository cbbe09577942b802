// Package storetest holds the behavioural contract every store backend must satisfy.
package storetest

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/simple-easy-issues/internal/store"
)

// ProviderFactory builds a fresh, empty provider for one subtest.
type ProviderFactory func(t *testing.T) store.Provider

var issuesSpec = store.ContainerSpec{Name: "Issues", PartitionKeyPath: "/_partitionKey"}

func doc(t *testing.T, fields map[string]interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(fields)
	require.NoError(t, err)
	return data
}

func decode(t *testing.T, raw json.RawMessage) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func issueDoc(t *testing.T, projectID, issueID, title, createdOn string) json.RawMessage {
	return doc(t, map[string]interface{}{
		"id":            issueID,
		"issueId":       issueID,
		"projectId":     projectID,
		"_partitionKey": projectID + ";" + issueID,
		"type":          "Issue",
		"title":         title,
		"createdOn":     createdOn,
	})
}

// Run exercises a provider against the container contract.
func Run(t *testing.T, newProvider ProviderFactory) {
	open := func(t *testing.T) store.Container {
		t.Helper()
		provider := newProvider(t)
		t.Cleanup(func() { _ = provider.Close() })

		c, err := provider.EnsureContainer(context.Background(), issuesSpec)
		require.NoError(t, err)
		return c
	}

	t.Run("EnsureContainerIsIdempotent", func(t *testing.T) {
		provider := newProvider(t)
		t.Cleanup(func() { _ = provider.Close() })
		ctx := context.Background()

		first, err := provider.EnsureContainer(ctx, issuesSpec)
		require.NoError(t, err)
		require.NoError(t, first.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		second, err := provider.EnsureContainer(ctx, issuesSpec)
		require.NoError(t, err)

		got, err := second.Get(ctx, "a", "P1;a")
		require.NoError(t, err)
		assert.Equal(t, "A", decode(t, got)["title"])
	})

	t.Run("AddThenGet", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()

		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		got, err := c.Get(ctx, "a", "P1;a")
		require.NoError(t, err)
		fields := decode(t, got)
		assert.Equal(t, "a", fields["id"])
		assert.Equal(t, "P1;a", fields["_partitionKey"])
	})

	t.Run("GetRequiresMatchingPartition", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		_, err := c.Get(ctx, "a", "P2;a")
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = c.Get(ctx, "missing", "P1;missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("AddConflict", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		err := c.Add(ctx, issueDoc(t, "P1", "a", "other", "2024-01-02T00:00:00.000Z"))
		assert.ErrorIs(t, err, store.ErrConflict)

		got, err := c.Get(ctx, "a", "P1;a")
		require.NoError(t, err)
		assert.Equal(t, "A", decode(t, got)["title"], "conflicting add must not overwrite")
	})

	t.Run("SameIDInDifferentPartitions", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, doc(t, map[string]interface{}{"id": "x", "_partitionKey": "P1;x"})))
		require.NoError(t, c.Add(ctx, doc(t, map[string]interface{}{"id": "x", "_partitionKey": "P2;x"})))

		docs, err := c.Query(ctx, store.Query{})
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("AddRejectsDocumentWithoutPartitionKey", func(t *testing.T) {
		c := open(t)
		err := c.Add(context.Background(), doc(t, map[string]interface{}{"id": "a"}))
		assert.ErrorIs(t, err, store.ErrInvalidDocument)
	})

	t.Run("ReplaceOverwritesWholeDocument", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, doc(t, map[string]interface{}{
			"id": "a", "_partitionKey": "P1;a", "title": "A", "description": "old",
		})))

		require.NoError(t, c.Replace(ctx, "a", "P1;a", doc(t, map[string]interface{}{
			"id": "a", "_partitionKey": "P1;a", "title": "B",
		})))

		got, err := c.Get(ctx, "a", "P1;a")
		require.NoError(t, err)
		fields := decode(t, got)
		assert.Equal(t, "B", fields["title"])
		_, hasDescription := fields["description"]
		assert.False(t, hasDescription, "replace must not merge old fields")
	})

	t.Run("ReplaceMissing", func(t *testing.T) {
		c := open(t)
		err := c.Replace(context.Background(), "a", "P1;a", issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z"))
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("ReplacePartitionMismatch", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		err := c.Replace(ctx, "a", "P1;a", issueDoc(t, "P2", "a", "A", "2024-01-01T00:00:00.000Z"))
		assert.ErrorIs(t, err, store.ErrPartitionKeyMismatch)
	})

	t.Run("Remove", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		require.NoError(t, c.Remove(ctx, "a", "P1;a"))
		_, err := c.Get(ctx, "a", "P1;a")
		assert.ErrorIs(t, err, store.ErrNotFound)

		assert.ErrorIs(t, c.Remove(ctx, "a", "P1;a"), store.ErrNotFound)
	})

	t.Run("QueryFiltersAreConjunctive", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "b", "B", "2024-01-02T00:00:00.000Z")))
		require.NoError(t, c.Add(ctx, issueDoc(t, "P2", "c", "A", "2024-01-03T00:00:00.000Z")))
		require.NoError(t, c.Add(ctx, doc(t, map[string]interface{}{
			"id": "k", "_partitionKey": "P1;a", "type": "Comment", "projectId": "P1",
		})))

		docs, err := c.Query(ctx, store.Query{Filters: []store.Filter{
			store.Eq("type", "Issue"),
			store.Eq("projectId", "P1"),
		}})
		require.NoError(t, err)
		assert.Len(t, docs, 2)

		docs, err = c.Query(ctx, store.Query{Filters: []store.Filter{
			store.Eq("projectId", "P1"),
			store.Eq("title", "A"),
		}})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a", decode(t, docs[0])["id"])

		docs, err = c.Query(ctx, store.Query{Filters: []store.Filter{store.Eq("projectId", "none")}})
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("QueryOrdering", func(t *testing.T) {
		c := open(t)
		ctx := context.Background()
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "b", "B", "2024-01-02T00:00:00.000Z")))
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "c", "C", "2024-01-03T00:00:00.000Z")))
		require.NoError(t, c.Add(ctx, issueDoc(t, "P1", "a", "A", "2024-01-01T00:00:00.000Z")))

		ids := func(docs []json.RawMessage) []interface{} {
			out := make([]interface{}, len(docs))
			for i, d := range docs {
				out[i] = decode(t, d)["id"]
			}
			return out
		}

		desc, err := c.Query(ctx, store.Query{OrderBy: store.Desc("createdOn")})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"c", "b", "a"}, ids(desc))

		asc, err := c.Query(ctx, store.Query{OrderBy: store.Asc("title")})
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", "b", "c"}, ids(asc))
	})

	t.Run("QueryRejectsInvalidFieldNames", func(t *testing.T) {
		c := open(t)
		_, err := c.Query(context.Background(), store.Query{Filters: []store.Filter{store.Eq("a'b", "x")}})
		assert.Error(t, err)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		c := open(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.Query(ctx, store.Query{})
		assert.Error(t, err)
	})
}
