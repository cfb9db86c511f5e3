package resident

import (
	"context"
	"errors"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
)

// Document field names.
const (
	fieldName       = "name"
	fieldNameKana   = "nameKana"
	fieldBirthDate  = "birthDate"
	fieldGender     = "gender"
	fieldRoomNumber = "roomNumber"
	fieldCareLevel  = "careLevel"
	fieldNotes      = "notes"
	fieldIsActive   = "isActive"
	fieldCreatedAt  = "createdAt"
	fieldUpdatedAt  = "updatedAt"
)

// Repository stores residents in the mode's residents collection. Store
// errors are returned as they come.
type Repository struct {
	store docstore.Store
	mode  appmode.Mode
	now   func() time.Time
}

func NewRepository(store docstore.Store, mode appmode.Mode) *Repository {
	return &Repository{store: store, mode: mode, now: time.Now}
}

func (r *Repository) collection() string {
	return r.mode.Collection(appmode.Residents)
}

// ListActive returns residents with isActive=true ordered by name.
func (r *Repository) ListActive(ctx context.Context) ([]Resident, error) {
	snaps, err := r.store.Query(ctx, r.collection(),
		docstore.Where(fieldIsActive, true).OrderedBy(fieldName))
	if err != nil {
		return nil, err
	}

	residents := make([]Resident, 0, len(snaps))
	for _, snap := range snaps {
		residents = append(residents, fromDocument(snap.ID, snap.Data))
	}
	return residents, nil
}

// Get returns nil when the resident does not exist.
func (r *Repository) Get(ctx context.Context, id string) (*Resident, error) {
	doc, err := r.store.Get(ctx, r.collection(), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	res := fromDocument(id, doc)
	return &res, nil
}

// Create inserts the resident under a store-assigned id.
func (r *Repository) Create(ctx context.Context, res Resident) (string, error) {
	now := r.now().UTC()
	doc := toDocument(res)
	doc[fieldCreatedAt] = now
	doc[fieldUpdatedAt] = now
	return r.store.Create(ctx, r.collection(), doc)
}

// Update overwrites the supplied fields and refreshes updatedAt.
func (r *Repository) Update(ctx context.Context, id string, c Changes) error {
	fields := changesToDocument(c)
	fields[fieldUpdatedAt] = r.now().UTC()
	return r.store.Update(ctx, r.collection(), id, fields)
}

// SoftDelete marks the resident inactive. The document and its records stay.
func (r *Repository) SoftDelete(ctx context.Context, id string) error {
	inactive := false
	return r.Update(ctx, id, Changes{IsActive: &inactive})
}

// ListAll returns every resident, active or not, ordered by room.
func (r *Repository) ListAll(ctx context.Context) ([]Resident, error) {
	snaps, err := r.store.Query(ctx, r.collection(), docstore.Query{OrderBy: fieldRoomNumber})
	if err != nil {
		return nil, err
	}
	residents := make([]Resident, 0, len(snaps))
	for _, snap := range snaps {
		residents = append(residents, fromDocument(snap.ID, snap.Data))
	}
	return residents, nil
}

// Delete removes the resident document. Demo reset is the only caller;
// everything else goes through SoftDelete.
func (r *Repository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection(), id)
}

func toDocument(res Resident) docstore.Document {
	doc := docstore.Document{
		fieldName:       res.Name,
		fieldNameKana:   res.NameKana,
		fieldBirthDate:  dateOnly(res.BirthDate),
		fieldGender:     string(res.Gender),
		fieldRoomNumber: res.RoomNumber,
		fieldCareLevel:  res.CareLevel,
		fieldIsActive:   res.IsActive,
	}
	if res.Notes != "" {
		doc[fieldNotes] = res.Notes
	}
	return doc
}

func changesToDocument(c Changes) docstore.Document {
	doc := docstore.Document{}
	if c.Name != nil {
		doc[fieldName] = *c.Name
	}
	if c.NameKana != nil {
		doc[fieldNameKana] = *c.NameKana
	}
	if c.BirthDate != nil {
		doc[fieldBirthDate] = dateOnly(*c.BirthDate)
	}
	if c.Gender != nil {
		doc[fieldGender] = string(*c.Gender)
	}
	if c.RoomNumber != nil {
		doc[fieldRoomNumber] = *c.RoomNumber
	}
	if c.CareLevel != nil {
		doc[fieldCareLevel] = *c.CareLevel
	}
	if c.Notes != nil {
		doc[fieldNotes] = *c.Notes
	}
	if c.IsActive != nil {
		doc[fieldIsActive] = *c.IsActive
	}
	return doc
}

func fromDocument(id string, doc docstore.Document) Resident {
	return Resident{
		ID:         id,
		Name:       docstore.String(doc, fieldName),
		NameKana:   docstore.String(doc, fieldNameKana),
		BirthDate:  dateOnly(docstore.Time(doc, fieldBirthDate)),
		Gender:     Gender(docstore.String(doc, fieldGender)),
		RoomNumber: docstore.String(doc, fieldRoomNumber),
		CareLevel:  docstore.Int(doc, fieldCareLevel),
		Notes:      docstore.String(doc, fieldNotes),
		IsActive:   docstore.Bool(doc, fieldIsActive),
		CreatedAt:  docstore.Time(doc, fieldCreatedAt),
		UpdatedAt:  docstore.Time(doc, fieldUpdatedAt),
	}
}

// dateOnly truncates to midnight UTC of the calendar day.
func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
