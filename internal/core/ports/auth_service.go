package ports

import "context"

// TokenPair is the session state handed to a client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthService interface {
	Authenticate(ctx context.Context, loginToken string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	RequestLoginLink(ctx context.Context, email string) error
}
