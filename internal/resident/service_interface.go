package resident

import (
	"context"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
)

// ServiceInterface defines the contract for resident business logic operations
type ServiceInterface interface {
	CreateResident(ctx context.Context, req CreateResidentRequest) (*Resident, error)
	GetResident(ctx context.Context, id string) (*Resident, error)
	ListActive(ctx context.Context) ([]Resident, error)
	ListActiveWithPagination(ctx context.Context, params pagination.Params) (*PaginatedResidentListResponse, error)
	UpdateResident(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error)
	DeactivateResident(ctx context.Context, id string) error
}

var _ ServiceInterface = (*Service)(nil)
