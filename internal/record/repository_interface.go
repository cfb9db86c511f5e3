package record

import "context"

// RepositoryInterface defines the contract for daily record data access
type RepositoryInterface interface {
	Get(ctx context.Context, residentID, date string) (*DailyRecord, error)
	Save(ctx context.Context, residentID, date string, patch Patch) error
	ListRange(ctx context.Context, residentID string, dates []string) ([]DailyRecord, error)
	ListDates(ctx context.Context, residentID string) ([]string, error)
	DeleteAll(ctx context.Context, residentID string) (int, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
