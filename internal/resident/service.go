package resident

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/messaging"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/pagination"
)

type Service struct {
	repo      RepositoryInterface
	publisher messaging.PublisherInterface
	mode      appmode.Mode
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo RepositoryInterface, publisher messaging.PublisherInterface, mode appmode.Mode, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		mode:      mode,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) CreateResident(ctx context.Context, req CreateResidentRequest) (*Resident, error) {
	res, err := req.Validate(s.now())
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(ctx, res)
	if err != nil {
		return nil, fmt.Errorf("failed to create resident: %w", err)
	}

	created, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load created resident: %w", err)
	}
	if created == nil {
		return nil, ErrResidentNotFound
	}

	s.logger.Info("resident created",
		zap.String("resident_id", id),
		zap.String("room", created.RoomNumber),
	)
	s.publish(ctx, messaging.EventResidentCreated, created)
	return created, nil
}

func (s *Service) GetResident(ctx context.Context, id string) (*Resident, error) {
	res, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get resident: %w", err)
	}
	if res == nil {
		return nil, ErrResidentNotFound
	}
	return res, nil
}

func (s *Service) ListActive(ctx context.Context) ([]Resident, error) {
	residents, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list residents: %w", err)
	}
	return residents, nil
}

// ListActiveWithPagination slices the name-ordered active roster.
func (s *Service) ListActiveWithPagination(ctx context.Context, params pagination.Params) (*PaginatedResidentListResponse, error) {
	residents, err := s.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	page, meta := pagination.Slice(residents, params)
	return &PaginatedResidentListResponse{
		Residents:  page,
		Pagination: meta,
	}, nil
}

func (s *Service) UpdateResident(ctx context.Context, id string, req UpdateResidentRequest) (*Resident, error) {
	changes, err := req.Validate(s.now())
	if err != nil {
		return nil, err
	}

	if _, err := s.GetResident(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, id, changes); err != nil {
		return nil, fmt.Errorf("failed to update resident: %w", err)
	}

	updated, err := s.GetResident(ctx, id)
	if err != nil {
		return nil, err
	}

	routingKey := messaging.EventResidentUpdated
	if changes.IsActive != nil && !*changes.IsActive {
		routingKey = messaging.EventResidentDeactivated
	}
	s.publish(ctx, routingKey, updated)
	return updated, nil
}

// DeactivateResident soft-deletes the resident.
func (s *Service) DeactivateResident(ctx context.Context, id string) error {
	res, err := s.GetResident(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("failed to deactivate resident: %w", err)
	}

	res.IsActive = false
	s.logger.Info("resident deactivated", zap.String("resident_id", id))
	s.publish(ctx, messaging.EventResidentDeactivated, res)
	return nil
}

func (s *Service) publish(ctx context.Context, routingKey string, res *Resident) {
	messaging.PublishOrLog(ctx, s.publisher, s.logger, routingKey, messaging.ResidentEvent{
		BaseEvent: messaging.NewBaseEvent(routingKey, s.mode.String()),
		Data: messaging.ResidentEventData{
			ResidentID: res.ID,
			Name:       res.Name,
			RoomNumber: res.RoomNumber,
			CareLevel:  res.CareLevel,
			IsActive:   res.IsActive,
			ChangedAt:  s.now().UTC(),
		},
	})
}
