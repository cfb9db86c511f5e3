package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// Schema holds every collection in one JSONB table keyed by (collection, id).
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_gin ON documents USING GIN (data jsonb_path_ops);
`

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore keeps documents in a JSONB column.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

// EnsureSchema creates the documents table when it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create documents table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s/%s: %w", collection, id, err)
	}
	return DecodeJSON(raw)
}

func (s *PostgresStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id := uuid.NewString()
	if err := s.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *PostgresStore) Set(ctx context.Context, collection, id string, data Document) error {
	body, err := EncodeJSON(data)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to set document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, collection, id string, fields Document) error {
	body, err := EncodeJSON(fields)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection = $1 AND id = $2`,
		collection, id, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to update document %s/%s: %w", collection, id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete document %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, collection string, q Query) ([]Snapshot, error) {
	query, args, err := buildSelect(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var (
			id  string
			raw []byte
		)
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := DecodeJSON(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, Snapshot{ID: id, Data: doc})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating documents: %w", err)
	}

	// JSONB text ordering does not match numeric or timestamp ordering for
	// every value, so the final order is settled in Go.
	SortSnapshots(out, q.OrderBy, q.Desc)
	return out, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func buildSelect(collection string, q Query) (string, []any, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}

	for _, f := range q.Where {
		if !fieldName.MatchString(f.Field) {
			return "", nil, fmt.Errorf("invalid field name %q", f.Field)
		}
		val, err := EncodeJSONValue(f.Value)
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode filter value: %w", err)
		}
		args = append(args, string(val))
		fmt.Fprintf(&sb, ` AND data->'%s' = $%d::jsonb`, f.Field, len(args))
	}
	return sb.String(), args, nil
}
