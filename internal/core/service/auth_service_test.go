package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/pkg/token"
)

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec("secret")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func newTestAuthService(t *testing.T, store *stubStore) (*AuthService, *token.Codec) {
	t.Helper()
	codec := newTestCodec(t)
	return NewAuthService(store, codec, TokenTTLs{}, discardLogger), codec
}

func loginToken(t *testing.T, codec *token.Codec, email string) string {
	t.Helper()
	raw, err := codec.Issue(token.PurposeLogin, token.Claims{Email: email}, time.Minute)
	if err != nil {
		t.Fatalf("issue login token: %v", err)
	}
	return raw
}

func TestAuthService_Authenticate_Success(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com", FirstName: "Ada", LastName: "X", RoleID: 1})
	svc, codec := newTestAuthService(t, store)

	pair, err := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatalf("expected both tokens, got %+v", pair)
	}

	access, err := codec.Read(token.PurposeAccess, pair.AccessToken)
	if err != nil {
		t.Fatalf("access token invalid: %v", err)
	}
	if access.UserID != 7 {
		t.Fatalf("expected access token for user 7, got %d", access.UserID)
	}

	refresh, err := codec.Read(token.PurposeRefresh, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh token invalid: %v", err)
	}
	if refresh.UserID != 7 {
		t.Fatalf("expected refresh token for user 7, got %d", refresh.UserID)
	}
}

func TestAuthService_Authenticate_InvalidToken(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 1, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)

	accessAsLogin, _ := codec.Issue(token.PurposeAccess, token.Claims{Email: "a@x.com"}, time.Minute)

	for name, raw := range map[string]string{
		"garbage":       "not-a-token",
		"wrong purpose": accessAsLogin,
	} {
		if _, err := svc.Authenticate(context.Background(), raw); !errors.Is(err, domain.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestAuthService_Authenticate_MissingEmail(t *testing.T) {
	svc, codec := newTestAuthService(t, newStubStore())

	raw, _ := codec.Issue(token.PurposeLogin, token.Claims{}, time.Minute)
	if _, err := svc.Authenticate(context.Background(), raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Authenticate_UnknownEmail(t *testing.T) {
	svc, codec := newTestAuthService(t, newStubStore())

	_, err := svc.Authenticate(context.Background(), loginToken(t, codec, "ghost@x.com"))
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAuthService_Authenticate_StoreFailure(t *testing.T) {
	store := newStubStore()
	svc, codec := newTestAuthService(t, store)
	raw := loginToken(t, codec, "a@x.com")
	store.err = errStoreDown

	_, err := svc.Authenticate(context.Background(), raw)
	if !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if !errors.Is(err, errStoreDown) {
		t.Fatalf("expected cause to be preserved, got %v", err)
	}
}

func TestAuthService_Refresh_Success(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)

	first, err := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}

	second, err := svc.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	claims, err := codec.Read(token.PurposeAccess, second.AccessToken)
	if err != nil || claims.UserID != 7 {
		t.Fatalf("expected new access token for user 7, got %+v (%v)", claims, err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}

	// Without single-use tracking the superseded token keeps working.
	if _, err := svc.Refresh(context.Background(), first.RefreshToken); err != nil {
		t.Fatalf("expected old refresh token to remain usable, got %v", err)
	}
}

func TestAuthService_Refresh_DeletedUser(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)

	pair, err := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	delete(store.users, 7)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("deleted user must not surface as Unauthorized")
	}
}

func TestAuthService_Refresh_RejectsOtherPurposes(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)

	pair, _ := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))

	if _, err := svc.Refresh(context.Background(), pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("access token as refresh: expected ErrInvalidToken, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), loginToken(t, codec, "a@x.com")); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("login token as refresh: expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Refresh_MissingUserClaim(t *testing.T) {
	svc, codec := newTestAuthService(t, newStubStore())

	raw, _ := codec.Issue(token.PurposeRefresh, token.Claims{Email: "a@x.com"}, time.Hour)
	if _, err := svc.Refresh(context.Background(), raw); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Refresh_SingleUse(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)
	svc.WithRefreshTracker(&stubTracker{})

	pair, _ := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))

	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Fatalf("second refresh: expected ErrInvalidToken, got %v", err)
	}
}

func TestAuthService_Refresh_TrackerFailure(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 7, Email: "a@x.com"})
	svc, codec := newTestAuthService(t, store)
	svc.WithRefreshTracker(&stubTracker{err: errStoreDown})

	pair, _ := svc.Authenticate(context.Background(), loginToken(t, codec, "a@x.com"))
	if _, err := svc.Refresh(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
}

func TestAuthService_IssueLoginToken(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 3, Email: "b@x.com"})
	svc, codec := newTestAuthService(t, store)

	raw, err := svc.IssueLoginToken(context.Background(), "b@x.com")
	if err != nil {
		t.Fatalf("IssueLoginToken: %v", err)
	}
	claims, err := codec.Read(token.PurposeLogin, raw)
	if err != nil || claims.Email != "b@x.com" {
		t.Fatalf("unexpected login token claims %+v (%v)", claims, err)
	}

	if _, err := svc.IssueLoginToken(context.Background(), "ghost@x.com"); !errors.Is(err, domain.ErrEntityNotFound) {
		t.Fatalf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestAuthService_RequestLoginLink(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 3, Email: "b@x.com", FirstName: "Bea", LastName: "Stone"})
	svc, codec := newTestAuthService(t, store)
	queue := &stubQueue{}
	svc.WithLoginLinks(queue)

	if err := svc.RequestLoginLink(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("RequestLoginLink: %v", err)
	}
	if len(queue.jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(queue.jobs))
	}
	job := queue.jobs[0]
	if job.Email != "b@x.com" || job.Name != "Bea Stone" {
		t.Fatalf("unexpected job %+v", job)
	}
	if _, err := codec.Read(token.PurposeLogin, job.Token); err != nil {
		t.Fatalf("job carries invalid login token: %v", err)
	}
}

func TestAuthService_RequestLoginLink_UnknownEmail(t *testing.T) {
	svc, _ := newTestAuthService(t, newStubStore())
	queue := &stubQueue{}
	svc.WithLoginLinks(queue)

	if err := svc.RequestLoginLink(context.Background(), "ghost@x.com"); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(queue.jobs))
	}
}

func TestAuthService_RequestLoginLink_QueueFullIsNotAnError(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 3, Email: "b@x.com"})
	svc, _ := newTestAuthService(t, store)
	queue := &stubQueue{full: true}
	svc.WithLoginLinks(queue)

	if err := svc.RequestLoginLink(context.Background(), "b@x.com"); err != nil {
		t.Fatalf("expected nil error when the queue is full, got %v", err)
	}
	if len(queue.jobs) != 0 {
		t.Fatalf("expected no accepted jobs, got %d", len(queue.jobs))
	}
}

func TestAuthService_LogsThroughRequestLogger(t *testing.T) {
	store := newStubStore()
	store.seed(domain.User{ID: 9, Email: "c@x.com"})
	svc, codec := newTestAuthService(t, store)

	var buf bytes.Buffer
	reqLogger := zerolog.New(&buf).With().Str("request_id", "req-42").Logger()
	ctx := reqLogger.WithContext(context.Background())

	if _, err := svc.Authenticate(ctx, loginToken(t, codec, "c@x.com")); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-42"`) || !strings.Contains(out, "login token exchanged") {
		t.Fatalf("expected service log line tagged with the request id, got %q", out)
	}
}
