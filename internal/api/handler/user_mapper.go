package handler

import (
	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
)

// --- Request → Service input ---

func toCreateUserInput(req createUserRequest) ports.CreateUserInput {
	return ports.CreateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		RoleID:    req.RoleID,
	}
}

func toUpdateUserInput(req updateUserRequest) ports.UpdateUserInput {
	return ports.UpdateUserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		RoleID:    req.RoleID,
	}
}

// --- Domain → Response ---

// toUserResponse never carries the password hash.
func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		FullName:  u.FullName(),
		RoleID:    u.RoleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toRoleResponses(roles []domain.Role) []roleResponse {
	out := make([]roleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, roleResponse{ID: r.ID, Name: r.Name})
	}
	return out
}
