package ports

import (
	"context"

	"github.com/99minutos/admin-api/internal/core/domain"
)

// CreateUserInput carries the fields of a new user.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	RoleID    int64
}

// UpdateUserInput is a partial update: nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Email     *string
	Password  *string
	RoleID    *int64
}

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor *domain.User, id int64, input UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.User, id int64) error
}

type RoleService interface {
	List(ctx context.Context) ([]domain.Role, error)
}
