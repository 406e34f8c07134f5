package ports

import (
	"context"

	"github.com/99minutos/admin-api/internal/core/domain"
)

// LoginLinkJob asks for a login link to be mailed to Email.
type LoginLinkJob struct {
	Email string
	Name  string
	Token string
}

// LoginLinkQueue accepts login-link jobs for asynchronous delivery.
type LoginLinkQueue interface {
	// Enqueue must not block. It reports whether job was accepted.
	Enqueue(ctx context.Context, job LoginLinkJob) bool
}

// Mailer delivers a single login-link message.
type Mailer interface {
	SendLoginLink(ctx context.Context, job LoginLinkJob) error
}

// UserEventPublisher forwards user changes to downstream consumers.
type UserEventPublisher interface {
	Publish(ctx context.Context, event domain.UserEvent) error
}
