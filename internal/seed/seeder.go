package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/record"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
)

// DefaultDays is how many days of records a seed writes, today included.
const DefaultDays = 3

var (
	ErrNotDemoMode   = errors.New("demo maintenance is only available in demo mode")
	ErrAlreadySeeded = errors.New("demo data already exists, use reset instead")
)

// ResidentStore is the resident persistence the seeder needs.
type ResidentStore interface {
	Create(ctx context.Context, res resident.Resident) (string, error)
	ListAll(ctx context.Context) ([]resident.Resident, error)
	Delete(ctx context.Context, id string) error
}

// RecordStore is the daily-record persistence the seeder needs.
type RecordStore interface {
	record.Saver
	DeleteAll(ctx context.Context, residentID string) (int, error)
}

type UserStore interface {
	DeleteAllExcept(ctx context.Context, keepID string) (int, error)
}

// Result summarizes one seed run.
type Result struct {
	Residents int      `json:"residents"`
	Records   int      `json:"records"`
	Dates     []string `json:"dates"`
}

// Status reports whether the demo namespace holds data.
type Status struct {
	Mode      string `json:"mode"`
	Seeded    bool   `json:"seeded"`
	Residents int    `json:"residents"`
}

// Seeder owns the demo namespace. Every operation refuses to run in
// production mode before touching the store.
type Seeder struct {
	residents  ResidentStore
	records    RecordStore
	users      UserStore
	dispatcher *record.Dispatcher
	publisher  messaging.PublisherInterface
	mode       appmode.Mode
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

func NewSeeder(
	residents ResidentStore,
	records RecordStore,
	users UserStore,
	publisher messaging.PublisherInterface,
	mode appmode.Mode,
	loc *time.Location,
	logger *zap.Logger,
) *Seeder {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Seeder{
		residents:  residents,
		records:    records,
		users:      users,
		dispatcher: record.NewDispatcher(records),
		publisher:  publisher,
		mode:       mode,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Exists reports whether any demo resident is stored.
func (s *Seeder) Exists(ctx context.Context) (bool, error) {
	st, err := s.Status(ctx)
	if err != nil {
		return false, err
	}
	return st.Seeded, nil
}

func (s *Seeder) Status(ctx context.Context) (*Status, error) {
	if !s.mode.IsDemo() {
		return nil, ErrNotDemoMode
	}
	all, err := s.residents.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list demo residents: %w", err)
	}
	return &Status{Mode: s.mode.String(), Seeded: len(all) > 0, Residents: len(all)}, nil
}

// Seed writes the catalog and DefaultDays of records per resident. It
// refuses to run when demo residents already exist.
func (s *Seeder) Seed(ctx context.Context) (*Result, error) {
	exists, err := s.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadySeeded
	}
	return s.seed(ctx)
}

// Reset deletes demo residents with their records and every demo user but
// the guest, then seeds again.
func (s *Seeder) Reset(ctx context.Context) (*Result, error) {
	if !s.mode.IsDemo() {
		return nil, ErrNotDemoMode
	}

	all, err := s.residents.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list demo residents: %w", err)
	}
	records := 0
	for _, res := range all {
		n, err := s.records.DeleteAll(ctx, res.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete records of %s: %w", res.ID, err)
		}
		records += n
		if err := s.residents.Delete(ctx, res.ID); err != nil {
			return nil, fmt.Errorf("failed to delete resident %s: %w", res.ID, err)
		}
	}

	users, err := s.users.DeleteAllExcept(ctx, auth.GuestUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete demo users: %w", err)
	}

	s.logger.Info("demo data cleared",
		zap.Int("residents", len(all)),
		zap.Int("records", records),
		zap.Int("users", users),
	)

	result, err := s.seed(ctx)
	if err != nil {
		return nil, err
	}

	messaging.PublishOrLog(ctx, s.publisher, s.logger, messaging.EventDemoReset, messaging.DemoResetEvent{
		BaseEvent: messaging.NewBaseEvent(messaging.EventDemoReset, s.mode.String()),
		Data: messaging.DemoResetData{
			Residents: result.Residents,
			Days:      len(result.Dates),
			ResetAt:   s.now().UTC(),
		},
	})
	return result, nil
}

func (s *Seeder) seed(ctx context.Context) (*Result, error) {
	dates := record.RecentDates(s.now(), DefaultDays, s.loc)
	result := &Result{Dates: dates}

	var targets []record.BulkTarget
	for _, res := range Residents() {
		id, err := s.residents.Create(ctx, res)
		if err != nil {
			return result, fmt.Errorf("failed to create resident %s: %w", res.Name, err)
		}
		result.Residents++

		for _, rec := range GenerateRecords(id, dates, s.loc) {
			targets = append(targets, record.BulkTarget{
				ResidentID: id,
				Date:       rec.Date,
				Patch:      rec.ToPatch(),
			})
		}
	}

	err := s.dispatcher.SaveBulk(ctx, targets)
	result.Records = len(targets)
	var bulkErr *record.BulkError
	if errors.As(err, &bulkErr) {
		result.Records -= len(bulkErr.Failed)
	}
	if err != nil {
		return result, fmt.Errorf("failed to write demo records: %w", err)
	}

	s.logger.Info("demo data seeded",
		zap.Int("residents", result.Residents),
		zap.Int("records", result.Records),
		zap.Strings("dates", dates),
	)
	return result, nil
}
