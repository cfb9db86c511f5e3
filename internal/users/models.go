package users

import (
	"strings"
	"time"

	"github.com/WailSalutem-Health-Care/care-record-service/internal/auth"
)

// User is a staff member allowed to use the service. The id is the
// identity provider's subject.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateUserRequest provisions a user document for an existing identity.
type CreateUserRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Validate normalizes the request and returns the user to store.
func (r *CreateUserRequest) Validate() (User, error) {
	u := User{
		ID:       strings.TrimSpace(r.ID),
		Email:    strings.TrimSpace(r.Email),
		Name:     strings.TrimSpace(r.Name),
		Role:     strings.ToLower(strings.TrimSpace(r.Role)),
		IsActive: true,
	}
	if r.IsActive != nil {
		u.IsActive = *r.IsActive
	}
	switch {
	case u.ID == "":
		return User{}, ErrMissingID
	case u.Email == "":
		return User{}, ErrMissingEmail
	case u.Name == "":
		return User{}, ErrMissingName
	case u.Role != auth.RoleAdmin && u.Role != auth.RoleStaff:
		return User{}, ErrInvalidRole
	}
	return u, nil
}

// Guest is the fixed demo user.
func Guest() User {
	return User{
		ID:       auth.GuestUserID,
		Email:    auth.GuestEmail,
		Name:     auth.GuestName,
		Role:     auth.RoleStaff,
		IsActive: true,
	}
}
