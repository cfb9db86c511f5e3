package record

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
)

const (
	DefaultHistoryDays = 7
	MaxHistoryDays     = 90
)

// ResidentLookup is the part of the resident service the record service
// depends on.
type ResidentLookup interface {
	GetResident(ctx context.Context, id string) (*resident.Resident, error)
	ListActive(ctx context.Context) ([]resident.Resident, error)
}

// MetricsRecorder receives command outcomes.
type MetricsRecorder interface {
	RecordRecordOperation(ctx context.Context, kind, action string, success bool)
	RecordBulkDispatch(ctx context.Context, targets, failed int)
}

// Service applies typed commands to daily records. Every command is
// fetch, merge in memory, save. Commands on the same (resident, date) are
// serialized inside this process; writers in other processes can still
// overwrite each other.
type Service struct {
	repo       RepositoryInterface
	residents  ResidentLookup
	dispatcher *Dispatcher
	publisher  messaging.PublisherInterface
	metrics    MetricsRecorder
	mode       appmode.Mode
	loc        *time.Location
	logger     *zap.Logger
	locks      *keyedMutex
	now        func() time.Time
	newID      func() string
}

type ServiceOption func(*Service)

func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func NewService(
	repo RepositoryInterface,
	residents ResidentLookup,
	publisher messaging.PublisherInterface,
	mode appmode.Mode,
	loc *time.Location,
	logger *zap.Logger,
	opts ...ServiceOption,
) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		repo:       repo,
		residents:  residents,
		dispatcher: NewDispatcher(repo),
		publisher:  publisher,
		mode:       mode,
		loc:        loc,
		logger:     logger,
		locks:      newKeyedMutex(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// mutation computes the patch to save from the current record.
type mutation struct {
	action  string
	kind    Kind
	kinds   []Kind
	entryID string
	apply   func(rec *DailyRecord) (Patch, error)
	// batched mutations are announced by one bulk event from the caller
	batched bool
}

func (m mutation) kindNames() []string {
	kinds := m.kinds
	if m.kind != "" {
		kinds = []Kind{m.kind}
	}
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}

// GetRecord returns nil when nothing was recorded that day.
func (s *Service) GetRecord(ctx context.Context, residentID, date string) (*DailyRecord, error) {
	if _, err := ParseDateKey(date); err != nil {
		return nil, err
	}
	rec, err := s.repo.Get(ctx, residentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily record: %w", err)
	}
	return rec, nil
}

func (s *Service) AppendVital(ctx context.Context, actor, residentID, date string, v Vital) (*DailyRecord, error) {
	s.prepareVital(&v, actor)
	if err := validateVital(v); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, appendVital(v))
}

func (s *Service) AppendExcretion(ctx context.Context, actor, residentID, date string, e Excretion) (*DailyRecord, error) {
	s.prepareExcretion(&e, actor)
	if err := validateExcretion(e); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, appendExcretion(e))
}

func (s *Service) AppendMeal(ctx context.Context, actor, residentID, date string, m Meal) (*DailyRecord, error) {
	s.prepareMeal(&m, actor)
	if err := validateMeal(m); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, appendMeal(m))
}

func (s *Service) AppendHydration(ctx context.Context, actor, residentID, date string, h Hydration) (*DailyRecord, error) {
	s.prepareHydration(&h, actor)
	if err := validateHydration(h); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, appendHydration(h))
}

// RemoveEntry drops the entry with entryID from the kind's list.
func (s *Service) RemoveEntry(ctx context.Context, actor, residentID, date string, kind Kind, entryID string) (*DailyRecord, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, mutation{
		action:  "remove",
		kind:    kind,
		entryID: entryID,
		apply: func(rec *DailyRecord) (Patch, error) {
			return removeEntry(rec, kind, entryID)
		},
	})
}

// ReplaceLists saves a raw patch: every supplied list replaces the stored
// one. Entries are validated and missing ids or authors are filled in.
func (s *Service) ReplaceLists(ctx context.Context, actor, residentID, date string, patch Patch) (*DailyRecord, error) {
	s.preparePatch(&patch, actor)
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return s.run(ctx, actor, residentID, date, mutation{
		action: "replace",
		kinds:  patch.Kinds(),
		apply:  func(*DailyRecord) (Patch, error) { return patch, nil },
	})
}

// run validates the target, then performs fetch-merge-save under the
// (resident, date) lock and returns the stored result.
func (s *Service) run(ctx context.Context, actor, residentID, date string, m mutation) (*DailyRecord, error) {
	if _, err := ParseDateKey(date); err != nil {
		return nil, err
	}
	if err := s.ensureResident(ctx, residentID); err != nil {
		return nil, err
	}

	rec, err := s.apply(ctx, residentID, date, m)
	s.recordOperation(ctx, m, err == nil)
	if err != nil {
		return nil, err
	}

	if !m.batched {
		messaging.PublishOrLog(ctx, s.publisher, s.logger, messaging.EventDailyRecordSaved, messaging.DailyRecordSavedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventDailyRecordSaved, s.mode.String()),
			Data: messaging.DailyRecordSavedData{
				ResidentID: residentID,
				Date:       date,
				Action:     m.action,
				Kinds:      m.kindNames(),
				EntryID:    m.entryID,
				RecordedBy: actor,
				SavedAt:    s.now().UTC(),
			},
		})
	}
	return rec, nil
}

func (s *Service) apply(ctx context.Context, residentID, date string, m mutation) (*DailyRecord, error) {
	unlock := s.locks.Lock(residentID + "/" + date)
	defer unlock()

	current, err := s.repo.Get(ctx, residentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to read daily record: %w", err)
	}
	if current == nil {
		current = &DailyRecord{ID: date, ResidentID: residentID, Date: date}
	}

	patch, err := m.apply(current)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, residentID, date, patch); err != nil {
		return nil, fmt.Errorf("failed to save daily record: %w", err)
	}

	saved, err := s.repo.Get(ctx, residentID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to reload daily record: %w", err)
	}
	return saved, nil
}

func (s *Service) ensureResident(ctx context.Context, residentID string) error {
	if residentID == "" {
		return ErrResidentNotFound
	}
	if _, err := s.residents.GetResident(ctx, residentID); err != nil {
		return err
	}
	return nil
}

func (s *Service) recordOperation(ctx context.Context, m mutation, success bool) {
	if s.metrics == nil {
		return
	}
	for _, kind := range m.kindNames() {
		s.metrics.RecordRecordOperation(ctx, kind, m.action, success)
	}
}

// BulkAppendRequest appends one entry to the same date for many residents.
// Exactly the entry matching Kind must be set.
type BulkAppendRequest struct {
	Date        string     `json:"date"`
	Kind        Kind       `json:"kind"`
	ResidentIDs []string   `json:"residentIds"`
	Vital       *Vital     `json:"vital,omitempty"`
	Excretion   *Excretion `json:"excretion,omitempty"`
	Meal        *Meal      `json:"meal,omitempty"`
	Hydration   *Hydration `json:"hydration,omitempty"`
}

// BulkAppendResult lists the residents whose record now holds the entry.
type BulkAppendResult struct {
	Date      string        `json:"date"`
	Kind      Kind          `json:"kind"`
	Succeeded []string      `json:"succeeded"`
	Failed    []BulkFailure `json:"failed,omitempty"`
}

// BulkAppend runs one append command per resident through the dispatcher.
// Each target re-reads its own record, so a retry after a partial failure
// re-derives the merged list instead of clobbering it. Each target gets a
// fresh entry id.
func (s *Service) BulkAppend(ctx context.Context, actor string, req BulkAppendRequest) (*BulkAppendResult, error) {
	if _, err := ParseDateKey(req.Date); err != nil {
		return nil, err
	}
	residentIDs := dedupe(req.ResidentIDs)
	if len(residentIDs) == 0 {
		return nil, ErrNoTargets
	}

	build, err := s.bulkMutation(actor, req)
	if err != nil {
		return nil, err
	}

	targets := make([]BulkTarget, len(residentIDs))
	for i, id := range residentIDs {
		targets[i] = BulkTarget{ResidentID: id, Date: req.Date}
	}

	dispatchErr := s.dispatcher.Dispatch(ctx, targets, func(ctx context.Context, t BulkTarget) error {
		m := build()
		m.batched = true
		_, err := s.run(ctx, actor, t.ResidentID, t.Date, m)
		return err
	})

	result := &BulkAppendResult{Date: req.Date, Kind: req.Kind}
	var bulkErr *BulkError
	if errors.As(dispatchErr, &bulkErr) {
		result.Failed = bulkErr.Failed
	}
	failed := make(map[string]bool, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.ResidentID] = true
	}
	for _, id := range residentIDs {
		if !failed[id] {
			result.Succeeded = append(result.Succeeded, id)
		}
	}

	if s.metrics != nil {
		s.metrics.RecordBulkDispatch(ctx, len(targets), len(result.Failed))
	}
	if len(result.Succeeded) > 0 {
		event := messaging.DailyRecordBulkSavedEvent{
			BaseEvent: messaging.NewBaseEvent(messaging.EventDailyRecordBulkSaved, s.mode.String()),
			Data: messaging.DailyRecordBulkSavedData{
				Date:        req.Date,
				Kind:        string(req.Kind),
				ResidentIDs: result.Succeeded,
				SavedAt:     s.now().UTC(),
			},
		}
		if bulkErr != nil {
			event.Data.FailedIDs = bulkErr.FailedResidentIDs()
		}
		messaging.PublishOrLog(ctx, s.publisher, s.logger, messaging.EventDailyRecordBulkSaved, event)
	}

	if dispatchErr != nil {
		s.logger.Warn("bulk append partially failed",
			zap.String("date", req.Date),
			zap.String("kind", string(req.Kind)),
			zap.Int("targets", len(targets)),
			zap.Int("failed", len(result.Failed)),
		)
		return result, dispatchErr
	}
	return result, nil
}

// bulkMutation validates the template entry once and returns a builder
// that yields a fresh append per target.
func (s *Service) bulkMutation(actor string, req BulkAppendRequest) (func() mutation, error) {
	switch req.Kind {
	case KindVitals:
		if req.Vital == nil {
			return nil, invalid("vital entry is required")
		}
		tmpl := *req.Vital
		s.prepareVital(&tmpl, actor)
		if err := validateVital(tmpl); err != nil {
			return nil, err
		}
		return func() mutation {
			v := tmpl
			v.ID = s.newID()
			return appendVital(v)
		}, nil
	case KindExcretions:
		if req.Excretion == nil {
			return nil, invalid("excretion entry is required")
		}
		tmpl := *req.Excretion
		s.prepareExcretion(&tmpl, actor)
		if err := validateExcretion(tmpl); err != nil {
			return nil, err
		}
		return func() mutation {
			e := tmpl
			e.ID = s.newID()
			return appendExcretion(e)
		}, nil
	case KindMeals:
		if req.Meal == nil {
			return nil, invalid("meal entry is required")
		}
		tmpl := *req.Meal
		s.prepareMeal(&tmpl, actor)
		if err := validateMeal(tmpl); err != nil {
			return nil, err
		}
		return func() mutation {
			m := tmpl
			m.ID = s.newID()
			return appendMeal(m)
		}, nil
	case KindHydrations:
		if req.Hydration == nil {
			return nil, invalid("hydration entry is required")
		}
		tmpl := *req.Hydration
		s.prepareHydration(&tmpl, actor)
		if err := validateHydration(tmpl); err != nil {
			return nil, err
		}
		return func() mutation {
			h := tmpl
			h.ID = s.newID()
			return appendHydration(h)
		}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// DayOverview returns every active resident with its record for date.
func (s *Service) DayOverview(ctx context.Context, date string) ([]DayEntry, error) {
	if _, err := ParseDateKey(date); err != nil {
		return nil, err
	}
	residents, err := s.residents.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]DayEntry, 0, len(residents))
	for _, r := range residents {
		rec, err := s.repo.Get(ctx, r.ID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to get daily record for %s: %w", r.ID, err)
		}
		entries = append(entries, DayEntry{
			ResidentID:   r.ID,
			ResidentName: r.Name,
			RoomNumber:   r.RoomNumber,
			Record:       rec,
		})
	}
	return entries, nil
}

// ResidentHistory returns the records of the last days calendar days,
// newest first, with the day count actually used after defaulting and
// clamping. Days without records are omitted.
func (s *Service) ResidentHistory(ctx context.Context, residentID string, days int) ([]DailyRecord, int, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}
	days = min(days, MaxHistoryDays)
	if err := s.ensureResident(ctx, residentID); err != nil {
		return nil, 0, err
	}

	records, err := s.repo.ListRange(ctx, residentID, RecentDates(s.now(), days, s.loc))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list daily records: %w", err)
	}
	return records, days, nil
}

// Today returns today's date key in the facility timezone.
func (s *Service) Today() string {
	return FormatDateKey(s.now(), s.loc)
}

func appendVital(v Vital) mutation {
	return mutation{action: "append", kind: KindVitals, entryID: v.ID, apply: func(rec *DailyRecord) (Patch, error) {
		list := append(slices.Clone(rec.Vitals), v)
		return Patch{Vitals: &list}, nil
	}}
}

func appendExcretion(e Excretion) mutation {
	return mutation{action: "append", kind: KindExcretions, entryID: e.ID, apply: func(rec *DailyRecord) (Patch, error) {
		list := append(slices.Clone(rec.Excretions), e)
		return Patch{Excretions: &list}, nil
	}}
}

func appendMeal(m Meal) mutation {
	return mutation{action: "append", kind: KindMeals, entryID: m.ID, apply: func(rec *DailyRecord) (Patch, error) {
		list := append(slices.Clone(rec.Meals), m)
		return Patch{Meals: &list}, nil
	}}
}

func appendHydration(h Hydration) mutation {
	return mutation{action: "append", kind: KindHydrations, entryID: h.ID, apply: func(rec *DailyRecord) (Patch, error) {
		list := append(slices.Clone(rec.Hydrations), h)
		return Patch{Hydrations: &list}, nil
	}}
}

func removeEntry(rec *DailyRecord, kind Kind, entryID string) (Patch, error) {
	switch kind {
	case KindVitals:
		list, ok := without(rec.Vitals, entryID, func(v Vital) string { return v.ID })
		if !ok {
			return Patch{}, ErrEntryNotFound
		}
		return Patch{Vitals: &list}, nil
	case KindExcretions:
		list, ok := without(rec.Excretions, entryID, func(e Excretion) string { return e.ID })
		if !ok {
			return Patch{}, ErrEntryNotFound
		}
		return Patch{Excretions: &list}, nil
	case KindMeals:
		list, ok := without(rec.Meals, entryID, func(m Meal) string { return m.ID })
		if !ok {
			return Patch{}, ErrEntryNotFound
		}
		return Patch{Meals: &list}, nil
	case KindHydrations:
		list, ok := without(rec.Hydrations, entryID, func(h Hydration) string { return h.ID })
		if !ok {
			return Patch{}, ErrEntryNotFound
		}
		return Patch{Hydrations: &list}, nil
	}
	return Patch{}, ErrUnknownKind
}

func without[T any](list []T, id string, idOf func(T) string) ([]T, bool) {
	out := make([]T, 0, len(list))
	found := false
	for _, item := range list {
		if idOf(item) == id {
			found = true
			continue
		}
		out = append(out, item)
	}
	return out, found
}

func (s *Service) prepareVital(v *Vital, actor string) {
	now := s.now()
	v.ID = s.newID()
	v.RecordedBy = actor
	if v.Time == "" {
		v.Time = FormatTimeOfDay(now, s.loc)
	}
	if v.RecordedAt.IsZero() {
		v.RecordedAt = now.UTC()
	}
}

func (s *Service) prepareExcretion(e *Excretion, actor string) {
	now := s.now()
	e.ID = s.newID()
	e.RecordedBy = actor
	if e.Time == "" {
		e.Time = FormatTimeOfDay(now, s.loc)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = now.UTC()
	}
}

func (s *Service) prepareMeal(m *Meal, actor string) {
	m.ID = s.newID()
	m.RecordedBy = actor
	if m.RecordedAt.IsZero() {
		m.RecordedAt = s.now().UTC()
	}
}

func (s *Service) prepareHydration(h *Hydration, actor string) {
	now := s.now()
	h.ID = s.newID()
	h.RecordedBy = actor
	if h.Time == "" {
		h.Time = FormatTimeOfDay(now, s.loc)
	}
	if h.RecordedAt.IsZero() {
		h.RecordedAt = now.UTC()
	}
}

// preparePatch fills ids, authors and timestamps that callers left out.
func (s *Service) preparePatch(p *Patch, actor string) {
	now := s.now()
	if p.Vitals != nil {
		for i := range *p.Vitals {
			v := &(*p.Vitals)[i]
			stamp(&v.ID, &v.RecordedBy, &v.RecordedAt, actor, now, s.newID)
		}
	}
	if p.Excretions != nil {
		for i := range *p.Excretions {
			e := &(*p.Excretions)[i]
			stamp(&e.ID, &e.RecordedBy, &e.RecordedAt, actor, now, s.newID)
		}
	}
	if p.Meals != nil {
		for i := range *p.Meals {
			m := &(*p.Meals)[i]
			stamp(&m.ID, &m.RecordedBy, &m.RecordedAt, actor, now, s.newID)
		}
	}
	if p.Hydrations != nil {
		for i := range *p.Hydrations {
			h := &(*p.Hydrations)[i]
			stamp(&h.ID, &h.RecordedBy, &h.RecordedAt, actor, now, s.newID)
		}
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
