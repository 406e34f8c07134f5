package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
	"github.com/99minutos/admin-api/internal/pkg/token"
	"github.com/99minutos/admin-api/pkg/logger"
)

// TokenTTLs holds the lifetime of each token variant.
type TokenTTLs struct {
	Login   time.Duration
	Access  time.Duration
	Refresh time.Duration
}

func (t TokenTTLs) withDefaults() TokenTTLs {
	if t.Login <= 0 {
		t.Login = 15 * time.Minute
	}
	if t.Access <= 0 {
		t.Access = 15 * time.Minute
	}
	if t.Refresh <= 0 {
		t.Refresh = 7 * 24 * time.Hour
	}
	return t
}

// AuthService exchanges login tokens for sessions and rotates sessions.
// Sessions are stateless: the token pair is the only session state.
type AuthService struct {
	users   ports.UserReader
	codec   ports.TokenCodec
	ttls    TokenTTLs
	tracker ports.RefreshTracker
	links   ports.LoginLinkQueue
	logger  zerolog.Logger
}

func NewAuthService(users ports.UserReader, codec ports.TokenCodec, ttls TokenTTLs, log zerolog.Logger) *AuthService {
	return &AuthService{users: users, codec: codec, ttls: ttls.withDefaults(), logger: log}
}

// WithRefreshTracker makes refresh tokens single-use.
func (s *AuthService) WithRefreshTracker(tracker ports.RefreshTracker) *AuthService {
	s.tracker = tracker
	return s
}

// WithLoginLinks enables RequestLoginLink delivery.
func (s *AuthService) WithLoginLinks(links ports.LoginLinkQueue) *AuthService {
	s.links = links
	return s
}

// Authenticate exchanges a login token for a fresh access/refresh pair.
func (s *AuthService) Authenticate(ctx context.Context, loginToken string) (*ports.TokenPair, error) {
	claims, err := s.codec.Read(token.PurposeLogin, loginToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.Email == "" {
		return nil, domain.InvalidToken("token carries no email")
	}

	user, err := s.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.Unauthorized("no account for this login token")
		}
		return nil, domain.Internal(err)
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	s.log(ctx).Info().Int64("user_id", user.ID).Msg("login token exchanged")
	return pair, nil
}

// Refresh exchanges a refresh token for a new pair. A token whose user no
// longer exists is treated as revoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.codec.Read(token.PurposeRefresh, refreshToken)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == 0 {
		return nil, domain.InvalidToken("token carries no user")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, domain.Internal(err)
	}

	if s.tracker != nil {
		first, err := s.tracker.Consume(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
		if err != nil {
			return nil, domain.Internal(err)
		}
		if !first {
			s.log(ctx).Warn().Int64("user_id", user.ID).Str("jti", claims.ID).Msg("refresh token reused")
			return nil, domain.InvalidToken("refresh token already used")
		}
	}

	pair, err := s.issuePair(user.ID)
	if err != nil {
		return nil, err
	}

	return pair, nil
}

// IssueLoginToken mints a login token for an existing account.
func (s *AuthService) IssueLoginToken(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.EntityNotFound("user not found", map[string]any{"email": email})
		}
		return "", domain.Internal(err)
	}
	raw, err := s.codec.Issue(token.PurposeLogin, token.Claims{Email: user.Email}, s.ttls.Login)
	if err != nil {
		return "", domain.Internal(err)
	}
	return raw, nil
}

// RequestLoginLink mails a login link to email when an account exists.
// Unknown addresses are accepted silently.
func (s *AuthService) RequestLoginLink(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log(ctx).Info().Str("email", email).Msg("login link requested for unknown email")
			return nil
		}
		return domain.Internal(err)
	}

	raw, err := s.codec.Issue(token.PurposeLogin, token.Claims{Email: user.Email}, s.ttls.Login)
	if err != nil {
		return domain.Internal(err)
	}

	if s.links == nil {
		s.log(ctx).Warn().Int64("user_id", user.ID).Msg("login link delivery not configured")
		return nil
	}
	if !s.links.Enqueue(ctx, ports.LoginLinkJob{Email: user.Email, Name: user.FullName(), Token: raw}) {
		s.log(ctx).Warn().Int64("user_id", user.ID).Msg("login link not queued")
	}
	return nil
}

func (s *AuthService) log(ctx context.Context) *zerolog.Logger {
	return logger.FromContext(ctx, &s.logger)
}

func (s *AuthService) issuePair(userID int64) (*ports.TokenPair, error) {
	access, err := s.codec.Issue(token.PurposeAccess, token.Claims{UserID: userID}, s.ttls.Access)
	if err != nil {
		return nil, domain.Internal(err)
	}
	refresh, err := s.codec.Issue(token.PurposeRefresh, token.Claims{UserID: userID}, s.ttls.Refresh)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return &ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
