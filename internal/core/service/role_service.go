package service

import (
	"context"

	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
)

type RoleService struct {
	roles ports.RoleRepository
}

func NewRoleService(roles ports.RoleRepository) *RoleService {
	return &RoleService{roles: roles}
}

func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.ListRoles(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return roles, nil
}
