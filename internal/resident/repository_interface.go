package resident

import "context"

// RepositoryInterface defines the contract for resident data access
type RepositoryInterface interface {
	ListActive(ctx context.Context) ([]Resident, error)
	Get(ctx context.Context, id string) (*Resident, error)
	Create(ctx context.Context, res Resident) (string, error)
	Update(ctx context.Context, id string, c Changes) error
	SoftDelete(ctx context.Context, id string) error
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)
