package record

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// BulkTarget is one (resident, date, patch) triple of a bulk save.
type BulkTarget struct {
	ResidentID string `json:"residentId"`
	Date       string `json:"date"`
	Patch      Patch  `json:"patch"`
}

// Saver is the single-record write the dispatcher fans out.
type Saver interface {
	Save(ctx context.Context, residentID, date string, patch Patch) error
}

// Dispatcher runs one write per target, all at once, and waits for every
// one of them. A failed target never cancels the others and completed writes
// are not rolled back.
type Dispatcher struct {
	saver Saver
}

func NewDispatcher(saver Saver) *Dispatcher {
	return &Dispatcher{saver: saver}
}

// SaveBulk applies each target's patch with replace semantics.
func (d *Dispatcher) SaveBulk(ctx context.Context, targets []BulkTarget) error {
	return d.Dispatch(ctx, targets, func(ctx context.Context, t BulkTarget) error {
		return d.saver.Save(ctx, t.ResidentID, t.Date, t.Patch)
	})
}

// Dispatch runs apply for every target concurrently. It returns nil when
// all succeed and a *BulkError listing every failed target otherwise.
func (d *Dispatcher) Dispatch(ctx context.Context, targets []BulkTarget, apply func(context.Context, BulkTarget) error) error {
	errs := make([]error, len(targets))

	// No derived context: one failure must not abort writes in flight.
	var g errgroup.Group
	for i, t := range targets {
		g.Go(func() error {
			errs[i] = apply(ctx, t)
			return errs[i]
		})
	}
	if g.Wait() == nil {
		return nil
	}

	bulkErr := &BulkError{Total: len(targets)}
	for i, err := range errs {
		if err != nil {
			bulkErr.Failed = append(bulkErr.Failed, BulkFailure{
				ResidentID: targets[i].ResidentID,
				Date:       targets[i].Date,
				Err:        err,
			})
		}
	}
	return bulkErr
}
