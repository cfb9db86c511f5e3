package docstore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore maps collections and ids one to one onto Cloud Firestore.
// Collection paths with slashes address subcollections.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

// NewFirestoreFromApp opens the Firestore client of an initialized Firebase app.
func NewFirestoreFromApp(ctx context.Context, app *firebase.App) (*FirestoreStore, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return NewFirestoreStore(client), nil
}

var _ Store = (*FirestoreStore)(nil)

func (s *FirestoreStore) Get(ctx context.Context, collection, id string) (Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return Document(snap.Data()), nil
}

func (s *FirestoreStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	ref, _, err := s.client.Collection(collection).Add(ctx, map[string]any(Clone(data)))
	if err != nil {
		return "", fmt.Errorf("failed to create document in %s: %w", collection, err)
	}
	return ref.ID, nil
}

func (s *FirestoreStore) Set(ctx context.Context, collection, id string, data Document) error {
	if _, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]any(Clone(data))); err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Update(ctx context.Context, collection, id string, fields Document) error {
	if len(fields) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}
	updates := make([]firestore.Update, 0, len(fields))
	for k, v := range Clone(fields) {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{k}, Value: v})
	}
	_, err := s.client.Collection(collection).Doc(id).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.client.Collection(collection).Doc(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

// Query pushes equality filters to Firestore and sorts in process, which
// avoids composite index requirements for filter plus order combinations.
func (s *FirestoreStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	fq := s.client.Collection(collection).Query
	for _, f := range q.Where {
		fq = fq.Where(f.Field, "==", f.Value)
	}

	iter := fq.Documents(ctx)
	defer iter.Stop()

	var out []Snapshot
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", collection, err)
		}
		out = append(out, Snapshot{ID: snap.Ref.ID, Data: Document(snap.Data())})
	}

	SortSnapshots(out, q.OrderBy, q.Desc)
	return out, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
