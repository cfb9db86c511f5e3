package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process memory. It backs tests and local
// development; every read and write deep-copies so it behaves like a remote
// store with respect to aliasing.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return Clone(doc), nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MemoryStore) Set(ctx context.Context, collection, id string, data Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	col, ok := s.collections[collection]
	if !ok {
		col = make(map[string]Document)
		s.collections[collection] = col
	}
	col[id] = Clone(data)
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, fields Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range Clone(fields) {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []Snapshot
	for id, doc := range s.collections[collection] {
		if Matches(doc, q.Where) {
			out = append(out, Snapshot{ID: id, Data: Clone(doc)})
		}
	}
	s.mu.RUnlock()

	SortSnapshots(out, q.OrderBy, q.Desc)
	return out, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
