package users

import (
	"context"
	"errors"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
)

const (
	fieldEmail     = "email"
	fieldName      = "name"
	fieldRole      = "role"
	fieldIsActive  = "isActive"
	fieldCreatedAt = "createdAt"
)

// Repository keeps user documents keyed by identity subject.
type Repository struct {
	store docstore.Store
	mode  appmode.Mode
	now   func() time.Time
}

func NewRepository(store docstore.Store, mode appmode.Mode) *Repository {
	return &Repository{store: store, mode: mode, now: time.Now}
}

func (r *Repository) collection() string {
	return r.mode.Collection(appmode.Users)
}

// Get returns nil when no document exists for id.
func (r *Repository) Get(ctx context.Context, id string) (*User, error) {
	doc, err := r.store.Get(ctx, r.collection(), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u := fromDocument(id, doc)
	return &u, nil
}

// Create writes the user under u.ID and stamps createdAt.
func (r *Repository) Create(ctx context.Context, u User) error {
	return r.store.Set(ctx, r.collection(), u.ID, docstore.Document{
		fieldEmail:     u.Email,
		fieldName:      u.Name,
		fieldRole:      u.Role,
		fieldIsActive:  u.IsActive,
		fieldCreatedAt: r.now().UTC(),
	})
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	snaps, err := r.store.Query(ctx, r.collection(), docstore.Query{OrderBy: fieldCreatedAt})
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, fromDocument(s.ID, s.Data))
	}
	return out, nil
}

// DeleteAllExcept removes every user but keepID and returns how many went.
func (r *Repository) DeleteAllExcept(ctx context.Context, keepID string) (int, error) {
	all, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, u := range all {
		if u.ID == keepID {
			continue
		}
		if err := r.store.Delete(ctx, r.collection(), u.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func fromDocument(id string, doc docstore.Document) User {
	return User{
		ID:        id,
		Email:     docstore.String(doc, fieldEmail),
		Name:      docstore.String(doc, fieldName),
		Role:      docstore.String(doc, fieldRole),
		IsActive:  docstore.Bool(doc, fieldIsActive),
		CreatedAt: docstore.Time(doc, fieldCreatedAt),
	}
}
