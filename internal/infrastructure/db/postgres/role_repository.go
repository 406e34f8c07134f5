package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/admin-api/internal/core/domain"
)

type RoleRepository struct {
	db *sqlx.DB
}

func NewRoleRepository(db *sqlx.DB) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) ListRoles(ctx context.Context) ([]domain.Role, error) {
	roles := []domain.Role{}
	if err := r.db.SelectContext(ctx, &roles, `SELECT id, name FROM roles ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) FindRole(ctx context.Context, id int64) (*domain.Role, error) {
	var role domain.Role
	if err := r.db.GetContext(ctx, &role, r.db.Rebind(`SELECT id, name FROM roles WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}
