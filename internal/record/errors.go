package record

import (
	"errors"
	"fmt"
	"strings"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/resident"
)

// ErrResidentNotFound is shared with the resident package so callers can
// match either.
var ErrResidentNotFound = resident.ErrResidentNotFound

var (
	ErrEntryNotFound = errors.New("entry not found")
	ErrUnknownKind   = errors.New("unknown record kind")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrInvalidEntry  = errors.New("invalid entry")
	ErrReservedField = errors.New("field is managed by the service")
	ErrEmptyPatch    = errors.New("patch changes nothing")
	ErrNoTargets     = errors.New("no residents selected")
)

// invalid wraps ErrInvalidEntry with the offending detail.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidEntry, fmt.Sprintf(format, args...))
}

// IsValidationError reports whether err was caused by caller input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrUnknownKind, ErrInvalidDate, ErrInvalidEntry, ErrReservedField, ErrEmptyPatch, ErrNoTargets,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// BulkFailure is one target that could not be written.
type BulkFailure struct {
	ResidentID string `json:"residentId"`
	Date       string `json:"date"`
	Err        error  `json:"-"`
}

// BulkError is returned when at least one target of a bulk save fails.
// Targets that succeeded stay written.
type BulkError struct {
	Total  int
	Failed []BulkFailure
}

func (e *BulkError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bulk save: %d of %d targets failed", len(e.Failed), e.Total)
	for i, f := range e.Failed {
		if i == 3 {
			fmt.Fprintf(&sb, "; and %d more", len(e.Failed)-i)
			break
		}
		fmt.Fprintf(&sb, "; %s/%s: %v", f.ResidentID, f.Date, f.Err)
	}
	return sb.String()
}

func (e *BulkError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f.Err
	}
	return errs
}

// FailedResidentIDs lists the residents whose write failed.
func (e *BulkError) FailedResidentIDs() []string {
	ids := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		ids[i] = f.ResidentID
	}
	return ids
}
