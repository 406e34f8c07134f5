package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/admin-api/internal/api/middleware"
	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn func(ctx context.Context, loginToken string) (*ports.TokenPair, error)
	refreshFn      func(ctx context.Context, refreshToken string) (*ports.TokenPair, error)
	linkFn         func(ctx context.Context, email string) error
}

func (s *stubAuthService) Authenticate(ctx context.Context, loginToken string) (*ports.TokenPair, error) {
	return s.authenticateFn(ctx, loginToken)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) RequestLoginLink(ctx context.Context, email string) error {
	return s.linkFn(ctx, email)
}

type stubUserService struct {
	listFn   func(ctx context.Context) ([]domain.User, error)
	getFn    func(ctx context.Context, id int64) (*domain.User, error)
	createFn func(ctx context.Context, actor *domain.User, in ports.CreateUserInput) (*domain.User, error)
	updateFn func(ctx context.Context, actor *domain.User, id int64, in ports.UpdateUserInput) (*domain.User, error)
	deleteFn func(ctx context.Context, actor *domain.User, id int64) error
}

func (s *stubUserService) List(ctx context.Context) ([]domain.User, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, actor *domain.User, in ports.CreateUserInput) (*domain.User, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubUserService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

type stubRoleService struct {
	roles []domain.Role
	err   error
}

func (s *stubRoleService) List(context.Context) ([]domain.Role, error) {
	return s.roles, s.err
}

// newContext builds an echo context with the validator installed and, when
// caller is non-nil, the user the Auth middleware would have attached.
func newContext(method, target, body string, caller *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if caller != nil {
		c.Set(middleware.UserKey, caller)
	}
	return c, rec
}

func adminUser() *domain.User {
	return &domain.User{ID: 1, Email: "admin@example.com", FirstName: "Ada", LastName: "Lovelace", PasswordHash: "$2a$10$secret", RoleID: 1}
}
