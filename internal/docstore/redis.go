package docstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 5

// RedisStore keeps each document as a JSON string under doc:{collection}:{id}
// and tracks the ids of a collection in the set ids:{collection}. Queries
// scan the id set and filter in process.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

var _ Store = (*RedisStore)(nil)

func docKey(collection, id string) string {
	return "doc:" + collection + ":" + id
}

func idsKey(collection string) string {
	return "ids:" + collection
}

func (s *RedisStore) Get(ctx context.Context, collection, id string) (Document, error) {
	raw, err := s.client.Get(ctx, docKey(collection, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return DecodeJSON(raw)
}

func (s *RedisStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *RedisStore) Set(ctx context.Context, collection, id string, data Document) error {
	body, err := EncodeJSON(data)
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, docKey(collection, id), body, 0)
		pipe.SAdd(ctx, idsKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Update(ctx context.Context, collection, id string, fields Document) error {
	key := docKey(collection, id)

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		doc, err := DecodeJSON(raw)
		if err != nil {
			return err
		}
		for k, v := range fields {
			doc[k] = v
		}
		body, err := EncodeJSON(doc)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, body, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update document %s/%s: too much contention", collection, id)
}

func (s *RedisStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, docKey(collection, id))
		pipe.SRem(ctx, idsKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *RedisStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	ids, err := s.client.SMembers(ctx, idsKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = docKey(collection, id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", collection, err)
	}

	var out []Snapshot
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// id left behind by a crashed writer
			continue
		}
		doc, err := DecodeJSON([]byte(raw))
		if err != nil {
			return nil, err
		}
		if Matches(doc, q.Where) {
			out = append(out, Snapshot{ID: ids[i], Data: doc})
		}
	}

	SortSnapshots(out, q.OrderBy, q.Desc)
	return out, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
