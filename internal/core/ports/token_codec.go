package ports

import (
	"context"
	"time"

	"github.com/99minutos/admin-api/internal/pkg/token"
)

// TokenCodec issues and verifies purpose-bound bearer tokens.
type TokenCodec interface {
	Issue(purpose token.Purpose, claims token.Claims, ttl time.Duration) (string, error)
	Read(purpose token.Purpose, raw string) (*token.Claims, error)
}

// RefreshTracker records consumed refresh tokens when single-use refresh is
// enabled.
type RefreshTracker interface {
	// Consume marks tokenID as used for ttl and reports whether this was the
	// first use.
	Consume(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
