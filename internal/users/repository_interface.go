package users

import "context"

// RepositoryInterface defines the contract for user data access
type RepositoryInterface interface {
	Get(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, u User) error
	List(ctx context.Context) ([]User, error)
	DeleteAllExcept(ctx context.Context, keepID string) (int, error)
}

var _ RepositoryInterface = (*Repository)(nil)
