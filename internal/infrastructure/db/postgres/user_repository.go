package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/99minutos/admin-api/internal/core/domain"
)

const userColumns = `id, email, first_name, last_name, password_hash, role_id, created_at, updated_at`

type UserRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db, now: func() time.Time { return time.Now().UTC() }}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now()
	query := r.db.Rebind(`INSERT INTO users (email, first_name, last_name, password_hash, role_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, user.RoleID, now, now,
	).Scan(&id)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return domain.ErrUserExists
	case isForeignKeyViolation(err):
		return domain.ErrRoleNotFound
	default:
		return fmt.Errorf("insert user: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	now := r.now()
	query := r.db.Rebind(`UPDATE users
		SET email = ?, first_name = ?, last_name = ?, password_hash = ?, role_id = ?, updated_at = ?
		WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		user.Email, user.FirstName, user.LastName, user.PasswordHash, user.RoleID, now, user.ID,
	)
	switch {
	case err == nil:
	case isUniqueViolation(err):
		return domain.ErrUserExists
	case isForeignKeyViolation(err):
		return domain.ErrRoleNotFound
	default:
		return fmt.Errorf("update user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	user.UpdatedAt = now
	return nil
}

// DeleteUnreferenced deletes the user in a single guarded statement. When
// nothing was deleted the same transaction tells a missing user apart from a
// referenced one. A ticket inserted concurrently is still caught by the
// RESTRICT foreign keys.
func (r *UserRepository) DeleteUnreferenced(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete user: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM users
		WHERE id = ?
		AND NOT EXISTS (SELECT 1 FROM tickets WHERE assignee_id = ? OR supervisor_id = ?)`),
		id, id, id,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserReferenced
		}
		return fmt.Errorf("delete user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS (SELECT 1 FROM users WHERE id = ?)`), id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if exists {
			return domain.ErrUserReferenced
		}
		return domain.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserReferenced
		}
		return fmt.Errorf("commit delete user: %w", err)
	}
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var user domain.User
	if err := r.db.GetContext(ctx, &user, r.db.Rebind(query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}
