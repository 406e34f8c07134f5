package ports

import (
	"context"

	"github.com/99minutos/admin-api/internal/core/domain"
)

// UserReader resolves principals. It is all the authorization middleware and
// the authentication service need from the store.
type UserReader interface {
	// FindByID returns domain.ErrUserNotFound when no user has the id.
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	// FindByEmail matches the email exactly and returns domain.ErrUserNotFound
	// when absent.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// UserRepository is the credential store adapter backing user management.
type UserRepository interface {
	UserReader
	List(ctx context.Context) ([]domain.User, error)
	// Create inserts user and sets its ID and timestamps. A unique email
	// violation is reported as domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	// Update persists every mutable field of user.
	Update(ctx context.Context, user *domain.User) error
	// DeleteUnreferenced removes the user only when no ticket references it
	// as assignee or supervisor. The check and the delete run in one
	// transaction. Returns domain.ErrUserReferenced or domain.ErrUserNotFound.
	DeleteUnreferenced(ctx context.Context, id int64) error
}

// RoleRepository reads roles.
type RoleRepository interface {
	ListRoles(ctx context.Context) ([]domain.Role, error)
	// FindRole returns domain.ErrRoleNotFound when absent.
	FindRole(ctx context.Context, id int64) (*domain.Role, error)
}
