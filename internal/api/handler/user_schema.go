package handler

import "time"

// --- Request / Response types ---

type createUserRequest struct {
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	RoleID    int64  `json:"roleId" validate:"required,gt=0"`
}

// updateUserRequest is a partial update: absent fields stay unchanged.
type updateUserRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Email     *string `json:"email" validate:"omitempty,email,max=254"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	RoleID    *int64  `json:"roleId" validate:"omitempty,gt=0"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	FullName  string    `json:"fullName"`
	RoleID    int64     `json:"roleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type roleResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// errorEnvelope documents the error body rendered by the API error handler.
type errorEnvelope struct {
	Code    string         `json:"code" example:"ValidationError"`
	Message string         `json:"message" example:"email is already in use"`
	Status  int            `json:"status" example:"400"`
	Data    map[string]any `json:"data,omitempty"`
}
