package domain

import (
	"errors"
	"time"
)

// Store-level sentinels returned by repositories. Services translate them
// into the error kinds defined in errors.go.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrUserReferenced = errors.New("user is referenced by tickets")
	ErrRoleNotFound   = errors.New("role not found")
)

// User models an account of the administrative application.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	FirstName    string    `db:"first_name"`
	LastName     string    `db:"last_name"`
	PasswordHash string    `db:"password_hash"`
	RoleID       int64     `db:"role_id"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// FullName joins first and last name with a single space.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
