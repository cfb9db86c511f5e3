package record

import (
	"context"
	"errors"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/docstore"
)

// Repository reads and writes daily records at
// {records}/{residentId}/daily/{date}. It does not validate patches and it
// returns store errors as they come.
type Repository struct {
	store docstore.Store
	mode  appmode.Mode
	now   func() time.Time
}

func NewRepository(store docstore.Store, mode appmode.Mode) *Repository {
	return &Repository{store: store, mode: mode, now: time.Now}
}

func (r *Repository) collection(residentID string) string {
	return docstore.Path(r.mode.Collection(appmode.Records), residentID, appmode.DailySubcollection)
}

// Get returns nil when nothing has been recorded for that date.
func (r *Repository) Get(ctx context.Context, residentID, date string) (*DailyRecord, error) {
	doc, err := r.store.Get(ctx, r.collection(residentID), date)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(date, doc), nil
}

// Save merges the patch into the record for (residentID, date). A missing
// record is created with four empty lists before the patch is overlaid. Any
// list present in the patch replaces the stored list; createdAt is only
// written on creation.
func (r *Repository) Save(ctx context.Context, residentID, date string, patch Patch) error {
	col := r.collection(residentID)
	now := r.now().UTC()

	_, err := r.store.Get(ctx, col, date)
	if errors.Is(err, docstore.ErrNotFound) {
		doc := docstore.Document{
			fieldResidentID:        residentID,
			fieldDate:              date,
			string(KindVitals):     []any{},
			string(KindExcretions): []any{},
			string(KindMeals):      []any{},
			string(KindHydrations): []any{},
		}
		for k, v := range patchFields(patch) {
			doc[k] = v
		}
		doc[fieldCreatedAt] = now
		doc[fieldUpdatedAt] = now
		return r.store.Set(ctx, col, date, doc)
	}
	if err != nil {
		return err
	}

	fields := patchFields(patch)
	fields[fieldUpdatedAt] = now
	return r.store.Update(ctx, col, date, fields)
}

// ListRange returns the records that exist for the given dates, in the
// order of dates. Missing dates are skipped.
func (r *Repository) ListRange(ctx context.Context, residentID string, dates []string) ([]DailyRecord, error) {
	records := make([]DailyRecord, 0, len(dates))
	for _, date := range dates {
		rec, err := r.Get(ctx, residentID, date)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// ListDates returns the date keys recorded for a resident, oldest first.
func (r *Repository) ListDates(ctx context.Context, residentID string) ([]string, error) {
	snaps, err := r.store.Query(ctx, r.collection(residentID), docstore.Query{OrderBy: fieldDate})
	if err != nil {
		return nil, err
	}
	dates := make([]string, len(snaps))
	for i, s := range snaps {
		dates[i] = s.ID
	}
	return dates, nil
}

// DeleteAll removes every daily record of a resident. Only demo maintenance
// calls this.
func (r *Repository) DeleteAll(ctx context.Context, residentID string) (int, error) {
	dates, err := r.ListDates(ctx, residentID)
	if err != nil {
		return 0, err
	}
	col := r.collection(residentID)
	for _, date := range dates {
		if err := r.store.Delete(ctx, col, date); err != nil {
			return 0, err
		}
	}
	return len(dates), nil
}
