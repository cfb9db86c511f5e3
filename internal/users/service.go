package users

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/appmode"
	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

type Service struct {
	repo   RepositoryInterface
	mode   appmode.Mode
	logger *zap.Logger
}

func NewService(repo RepositoryInterface, mode appmode.Mode, logger *zap.Logger) *Service {
	return &Service{repo: repo, mode: mode, logger: logger}
}

var _ auth.RoleLookup = (*Service)(nil)

// SignInGuest returns the demo guest and stores its document on first use.
func (s *Service) SignInGuest(ctx context.Context) (*User, error) {
	if !s.mode.IsDemo() {
		return nil, ErrGuestDisabled
	}

	existing, err := s.repo.Get(ctx, auth.GuestUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guest user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	guest := Guest()
	if err := s.repo.Create(ctx, guest); err != nil {
		return nil, fmt.Errorf("failed to create guest user: %w", err)
	}
	s.logger.Info("guest user created", zap.String("user_id", guest.ID))

	stored, err := s.repo.Get(ctx, guest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload guest user: %w", err)
	}
	if stored == nil {
		return &guest, nil
	}
	return stored, nil
}

// Me resolves the signed-in principal to its user document.
func (s *Service) Me(ctx context.Context, principal *auth.Principal) (*User, error) {
	if principal == nil || principal.UserID == "" {
		return nil, ErrUnauthenticated
	}
	if s.mode.IsDemo() && principal.UserID == auth.GuestUserID {
		return s.SignInGuest(ctx)
	}

	u, err := s.repo.Get(ctx, principal.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// CreateUser provisions a user document for an identity that already
// exists at the identity provider.
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (*User, error) {
	u, err := req.Validate()
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user: %w", err)
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", u.Role))

	created, err := s.repo.Get(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created user: %w", err)
	}
	if created == nil {
		return nil, ErrUserNotFound
	}
	return created, nil
}

// RoleOf returns the stored role of an active user, "" otherwise.
func (s *Service) RoleOf(ctx context.Context, userID string) (string, error) {
	u, err := s.repo.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if u == nil || !u.IsActive {
		return "", nil
	}
	return u.Role, nil
}
