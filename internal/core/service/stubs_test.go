package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/internal/core/domain"
	"github.com/99minutos/admin-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub store
// ---------------------------------------------------------------------------

type stubStore struct {
	users      map[int64]*domain.User
	roles      map[int64]domain.Role
	referenced map[int64]bool
	nextID     int64

	err       error // if set, every call returns this error
	deleted   []int64
	mutations int
}

func newStubStore() *stubStore {
	return &stubStore{
		users:      make(map[int64]*domain.User),
		roles:      map[int64]domain.Role{1: {ID: 1, Name: "admin"}, 2: {ID: 2, Name: "agent"}},
		referenced: make(map[int64]bool),
		nextID:     1,
	}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (s *stubStore) seed(u domain.User) *domain.User {
	if u.ID == 0 {
		u.ID = s.nextID
	}
	if u.ID >= s.nextID {
		s.nextID = u.ID + 1
	}
	s.users[u.ID] = cloneUser(&u)
	return cloneUser(&u)
}

func (s *stubStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *stubStore) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (s *stubStore) List(_ context.Context) ([]domain.User, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.User, 0, len(s.users))
	for id := int64(1); id < s.nextID; id++ {
		if u, ok := s.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (s *stubStore) Create(_ context.Context, u *domain.User) error {
	if s.err != nil {
		return s.err
	}
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	now := time.Now().UTC()
	u.ID = s.nextID
	u.CreatedAt, u.UpdatedAt = now, now
	s.nextID++
	s.users[u.ID] = cloneUser(u)
	s.mutations++
	return nil
}

func (s *stubStore) Update(_ context.Context, u *domain.User) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[u.ID]; !ok {
		return domain.ErrUserNotFound
	}
	u.UpdatedAt = time.Now().UTC()
	s.users[u.ID] = cloneUser(u)
	s.mutations++
	return nil
}

func (s *stubStore) DeleteUnreferenced(_ context.Context, id int64) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	if s.referenced[id] {
		return domain.ErrUserReferenced
	}
	delete(s.users, id)
	s.deleted = append(s.deleted, id)
	s.mutations++
	return nil
}

func (s *stubStore) ListRoles(_ context.Context) ([]domain.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domain.Role{s.roles[1], s.roles[2]}, nil
}

func (s *stubStore) FindRole(_ context.Context, id int64) (*domain.Role, error) {
	if s.err != nil {
		return nil, s.err
	}
	r, ok := s.roles[id]
	if !ok {
		return nil, domain.ErrRoleNotFound
	}
	return &r, nil
}

// ---------------------------------------------------------------------------
// Other stubs
// ---------------------------------------------------------------------------

type stubTracker struct {
	seen map[string]bool
	err  error
}

func (t *stubTracker) Consume(_ context.Context, id string, _ time.Duration) (bool, error) {
	if t.err != nil {
		return false, t.err
	}
	if t.seen == nil {
		t.seen = make(map[string]bool)
	}
	if t.seen[id] {
		return false, nil
	}
	t.seen[id] = true
	return true, nil
}

type stubQueue struct {
	mu   sync.Mutex
	jobs []ports.LoginLinkJob
	full bool
}

func (q *stubQueue) Enqueue(_ context.Context, job ports.LoginLinkJob) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, job)
	return true
}

type stubPublisher struct {
	events []domain.UserEvent
	err    error
}

func (p *stubPublisher) Publish(_ context.Context, e domain.UserEvent) error {
	p.events = append(p.events, e)
	return p.err
}

var (
	discardLogger = zerolog.Nop()
	errStoreDown  = errors.New("connection refused")
)
