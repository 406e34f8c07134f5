package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
	"github.com/99minutos/admin-api/pkg/logger"
)

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.UserEvent) error { return nil }

// UserService implements user management on top of the credential store.
type UserService struct {
	users  ports.UserRepository
	roles  ports.RoleRepository
	events ports.UserEventPublisher
	logger zerolog.Logger
	cost   int
}

func NewUserService(users ports.UserRepository, roles ports.RoleRepository, log zerolog.Logger) *UserService {
	return &UserService{
		users:  users,
		roles:  roles,
		events: nopPublisher{},
		logger: log,
		cost:   bcrypt.DefaultCost,
	}
}

// WithEvents publishes user changes through p.
func (s *UserService) WithEvents(p ports.UserEventPublisher) *UserService {
	if p != nil {
		s.events = p
	}
	return s
}

// WithHashCost overrides the bcrypt cost, mainly for tests.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return users, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.find(ctx, id)
}

// Create validates references, re-checks email uniqueness against the store
// and inserts the user.
func (s *UserService) Create(ctx context.Context, actor *domain.User, in ports.CreateUserInput) (*domain.User, error) {
	if err := s.checkRole(ctx, in.RoleID); err != nil {
		return nil, err
	}
	if err := s.checkEmailFree(ctx, in.Email, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, domain.Internal(err)
	}

	user := &domain.User{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: string(hash),
		RoleID:       in.RoleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			return nil, emailTaken(in.Email)
		}
		s.log(ctx).Error().Err(err).Str("email", in.Email).Msg("failed to create user")
		return nil, domain.Internal(err)
	}

	s.log(ctx).Info().Int64("user_id", user.ID).Int64("actor_id", actorID(actor)).Msg("user created")
	s.publish(ctx, domain.UserCreated, user, actor)
	return user, nil
}

// Update applies a partial update. Keeping one's own email is allowed.
func (s *UserService) Update(ctx context.Context, actor *domain.User, id int64, in ports.UpdateUserInput) (*domain.User, error) {
	user, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.RoleID != nil {
		if err := s.checkRole(ctx, *in.RoleID); err != nil {
			return nil, err
		}
		user.RoleID = *in.RoleID
	}
	if in.Email != nil {
		if err := s.checkEmailFree(ctx, *in.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.cost)
		if err != nil {
			return nil, domain.Internal(err)
		}
		user.PasswordHash = string(hash)
	}

	if err := s.users.Update(ctx, user); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserExists):
			return nil, emailTaken(user.Email)
		case errors.Is(err, domain.ErrUserNotFound):
			return nil, userNotFound(id)
		}
		s.log(ctx).Error().Err(err).Int64("user_id", id).Msg("failed to update user")
		return nil, domain.Internal(err)
	}

	s.log(ctx).Info().Int64("user_id", user.ID).Int64("actor_id", actorID(actor)).Msg("user updated")
	s.publish(ctx, domain.UserUpdated, user, actor)
	return user, nil
}

// Delete removes a user that is neither the caller nor referenced by a ticket.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	user, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if actor != nil && actor.ID == id {
		return domain.Validation("you cannot delete your own account", map[string]any{"id": id})
	}

	if err := s.users.DeleteUnreferenced(ctx, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserReferenced):
			return domain.Validation("user is assigned to or supervises tickets", map[string]any{"id": id})
		case errors.Is(err, domain.ErrUserNotFound):
			return userNotFound(id)
		}
		s.log(ctx).Error().Err(err).Int64("user_id", id).Msg("failed to delete user")
		return domain.Internal(err)
	}

	s.log(ctx).Info().Int64("user_id", id).Int64("actor_id", actorID(actor)).Msg("user deleted")
	s.publish(ctx, domain.UserDeleted, user, actor)
	return nil
}

func (s *UserService) find(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, userNotFound(id)
		}
		return nil, domain.Internal(err)
	}
	return user, nil
}

func (s *UserService) checkRole(ctx context.Context, roleID int64) error {
	if _, err := s.roles.FindRole(ctx, roleID); err != nil {
		if errors.Is(err, domain.ErrRoleNotFound) {
			return domain.Validation("role does not exist", map[string]any{"roleId": roleID})
		}
		return domain.Internal(err)
	}
	return nil
}

// checkEmailFree fails when email belongs to a user other than ownerID.
func (s *UserService) checkEmailFree(ctx context.Context, email string, ownerID int64) error {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil
		}
		return domain.Internal(err)
	}
	if existing.ID != ownerID {
		return emailTaken(email)
	}
	return nil
}

func (s *UserService) publish(ctx context.Context, typ domain.UserEventType, user *domain.User, actor *domain.User) {
	event := domain.UserEvent{
		Type:       typ,
		UserID:     user.ID,
		Email:      user.Email,
		ActorID:    actorID(actor),
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log(ctx).Warn().Err(err).Str("type", string(typ)).Int64("user_id", user.ID).Msg("failed to publish user event")
	}
}

func (s *UserService) log(ctx context.Context) *zerolog.Logger {
	return logger.FromContext(ctx, &s.logger)
}

func emailTaken(email string) error {
	return domain.Validation("email is already in use", map[string]any{"email": email})
}

func userNotFound(id int64) error {
	return domain.EntityNotFound("user not found", map[string]any{"id": id})
}

func actorID(actor *domain.User) int64 {
	if actor == nil {
		return 0
	}
	return actor.ID
}
