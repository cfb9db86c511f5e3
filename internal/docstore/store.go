// Package docstore is a small document-database abstraction: schemaless
// documents addressed by (collection path, id), point reads and writes,
// shallow merge updates and equality queries with a single sort key.
//
// Documents are plain maps. Timestamps are always time.Time on the way in and
// on the way out, whatever the backend stores natively.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get and Update when the document does not exist.
var ErrNotFound = errors.New("docstore: document not found")

// Document is the body of a stored document.
type Document map[string]any

// Snapshot is a document together with its id.
type Snapshot struct {
	ID   string
	Data Document
}

// Filter is an equality predicate on a top-level field.
type Filter struct {
	Field string
	Value any
}

// Query selects documents of one collection. An empty query returns every
// document in the collection in unspecified order.
type Query struct {
	Where   []Filter
	OrderBy string
	Desc    bool
}

// Store is implemented by every backend.
type Store interface {
	// Get returns ErrNotFound when the document is absent.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create inserts a document under a store-assigned id.
	Create(ctx context.Context, collection string, data Document) (string, error)
	// Set writes the document, replacing any previous content.
	Set(ctx context.Context, collection, id string, data Document) error
	// Update overwrites the given top-level fields and keeps the rest.
	// It returns ErrNotFound when the document is absent.
	Update(ctx context.Context, collection, id string, fields Document) error
	// Delete removes the document. Deleting an absent document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Query(ctx context.Context, collection string, q Query) ([]Snapshot, error)
	Close() error
}

// Path joins collection path segments: Path("records", rid, "daily").
func Path(segments ...string) string {
	return strings.Join(segments, "/")
}

// Where is shorthand for a single-filter query.
func Where(field string, value any) Query {
	return Query{Where: []Filter{{Field: field, Value: value}}}
}

// OrderedBy returns a copy of q sorted ascending by field.
func (q Query) OrderedBy(field string) Query {
	q.OrderBy = field
	q.Desc = false
	return q
}
