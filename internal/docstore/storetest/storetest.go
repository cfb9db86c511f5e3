// Package storetest holds the behaviour every docstore backend must share.
// Backend tests call Run with a constructor for a fresh, empty store.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
)

func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Run("GetMissing", func(t *testing.T) {
		s := newStore(t)
		_, err := s.Get(context.Background(), "things", "nope")
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("SetThenGet", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		at := time.Date(2024, 3, 15, 6, 0, 0, 0, time.UTC)

		err := s.Set(ctx, "things", "a", docstore.Document{
			"name":  "alpha",
			"count": 3,
			"at":    at,
			"items": []any{map[string]any{"id": "x", "amount": 150}},
		})
		require.NoError(t, err)

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "alpha", docstore.String(doc, "name"))
		assert.Equal(t, 3, docstore.Int(doc, "count"))
		assert.True(t, at.Equal(docstore.Time(doc, "at")))

		items := docstore.List(doc, "items")
		require.Len(t, items, 1)
		assert.Equal(t, "x", docstore.String(items[0], "id"))
		assert.Equal(t, 150, docstore.Int(items[0], "amount"))
	})

	t.Run("SetReplaces", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"x": 1, "y": 2}))
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"x": 5}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, 5, docstore.Int(doc, "x"))
		_, ok := doc["y"]
		assert.False(t, ok)
	})

	t.Run("CreateAssignsID", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		id, err := s.Create(ctx, "things", docstore.Document{"name": "beta"})
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		doc, err := s.Get(ctx, "things", id)
		require.NoError(t, err)
		assert.Equal(t, "beta", docstore.String(doc, "name"))
	})

	t.Run("UpdateMergesTopLevel", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{
			"keep":  "me",
			"list":  []any{"one", "two"},
			"count": 1,
		}))
		require.NoError(t, s.Update(ctx, "things", "a", docstore.Document{
			"list":  []any{"three"},
			"count": 2,
		}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, "me", docstore.String(doc, "keep"))
		assert.Equal(t, []any{"three"}, doc["list"])
		assert.Equal(t, 2, docstore.Int(doc, "count"))
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		s := newStore(t)
		err := s.Update(context.Background(), "things", "ghost", docstore.Document{"a": 1})
		assert.ErrorIs(t, err, docstore.ErrNotFound)
	})

	t.Run("DeleteIsIdempotent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"x": 1}))
		require.NoError(t, s.Delete(ctx, "things", "a"))
		require.NoError(t, s.Delete(ctx, "things", "a"))

		_, err := s.Get(ctx, "things", "a")
		assert.ErrorIs(t, err, docstore.ErrNotFound)

		snaps, err := s.Query(ctx, "things", docstore.Query{})
		require.NoError(t, err)
		assert.Empty(t, snaps)
	})

	t.Run("QueryFiltersAndSorts", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "rooms", "c", docstore.Document{"room": "103", "active": true}))
		require.NoError(t, s.Set(ctx, "rooms", "a", docstore.Document{"room": "101", "active": true}))
		require.NoError(t, s.Set(ctx, "rooms", "b", docstore.Document{"room": "102", "active": false}))

		snaps, err := s.Query(ctx, "rooms", docstore.Where("active", true).OrderedBy("room"))
		require.NoError(t, err)
		require.Len(t, snaps, 2)
		assert.Equal(t, "a", snaps[0].ID)
		assert.Equal(t, "c", snaps[1].ID)

		snaps, err = s.Query(ctx, "rooms", docstore.Query{OrderBy: "room", Desc: true})
		require.NoError(t, err)
		require.Len(t, snaps, 3)
		assert.Equal(t, []string{"c", "b", "a"}, ids(snaps))
	})

	t.Run("SubcollectionsAreIndependent", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, docstore.Path("records", "r1", "daily"), "2024-03-15", docstore.Document{"n": 1}))
		require.NoError(t, s.Set(ctx, docstore.Path("records", "r2", "daily"), "2024-03-15", docstore.Document{"n": 2}))

		snaps, err := s.Query(ctx, docstore.Path("records", "r1", "daily"), docstore.Query{})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		assert.Equal(t, 1, docstore.Int(snaps[0].Data, "n"))
	})

	t.Run("ReturnedDocumentsAreCopies", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.Set(ctx, "things", "a", docstore.Document{"list": []any{"one"}}))

		doc, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		doc["list"].([]any)[0] = "mutated"

		again, err := s.Get(ctx, "things", "a")
		require.NoError(t, err)
		assert.Equal(t, []any{"one"}, again["list"])
	})
}

func ids(snaps []docstore.Snapshot) []string {
	out := make([]string, len(snaps))
	for i, s := range snaps {
		out[i] = s.ID
	}
	return out
}
