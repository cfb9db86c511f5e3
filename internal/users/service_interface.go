package users

import (
	"context"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

// ServiceInterface defines the contract for user operations
type ServiceInterface interface {
	SignInGuest(ctx context.Context) (*User, error)
	Me(ctx context.Context, principal *auth.Principal) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
}

var _ ServiceInterface = (*Service)(nil)
