package portfolio

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
)

// memStore is an in-memory out.Store that counts writes.
type memStore struct {
	mu         sync.Mutex
	users      map[string]*domain.User
	portfolios map[string]*domain.Portfolio
	slugs      map[string]string
	locks      map[string]string
	writes     int
	tokens     int

	// afterGet runs after GetPortfolio has read the record, outside the store mutex.
	afterGet func(owner string)

	failGet  error
	failSave error
	failSlug error
}

var _ out.Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*domain.User{},
		portfolios: map[string]*domain.Portfolio{},
		slugs:      map[string]string{},
		locks:      map[string]string{},
	}
}

func (m *memStore) GetUser(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, out.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memStore) CreateUserIfAbsent(_ context.Context, u *domain.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return false, nil
	}
	c := *u
	m.users[u.Email] = &c
	m.writes++
	return true, nil
}

func (m *memStore) GetPortfolio(_ context.Context, owner string) (*domain.Portfolio, error) {
	m.mu.Lock()
	if m.failGet != nil {
		m.mu.Unlock()
		return nil, m.failGet
	}
	p, ok := m.portfolios[owner]
	if !ok {
		m.mu.Unlock()
		return nil, out.ErrNotFound
	}
	c := p.Clone()
	hook := m.afterGet
	m.mu.Unlock()

	if hook != nil {
		hook(owner)
	}
	return c, nil
}

func (m *memStore) SavePortfolio(_ context.Context, owner string, p *domain.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave != nil {
		return m.failSave
	}
	m.portfolios[owner] = p.Clone()
	m.writes++
	return nil
}

func (m *memStore) CreatePortfolioIfAbsent(_ context.Context, owner string, p *domain.Portfolio) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.portfolios[owner]; ok {
		return false, nil
	}
	m.portfolios[owner] = p.Clone()
	m.writes++
	return true, nil
}

func (m *memStore) ScanOwners(_ context.Context, _ int, fn func([]string) error) error {
	m.mu.Lock()
	owners := make([]string, 0, len(m.portfolios))
	for k := range m.portfolios {
		owners = append(owners, k)
	}
	m.mu.Unlock()
	return fn(owners)
}

func (m *memStore) ReserveSlug(_ context.Context, slug, owner string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSlug != nil {
		return false, m.failSlug
	}
	if _, ok := m.slugs[slug]; ok {
		return false, nil
	}
	m.slugs[slug] = owner
	m.writes++
	return true, nil
}

func (m *memStore) PutSlug(_ context.Context, slug, owner string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSlug != nil {
		return m.failSlug
	}
	m.slugs[slug] = owner
	m.writes++
	return nil
}

func (m *memStore) ResolveSlug(_ context.Context, slug string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	owner, ok := m.slugs[slug]
	if !ok {
		return "", out.ErrNotFound
	}
	return owner, nil
}

func (m *memStore) Lock(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[key]; held {
		return "", false, nil
	}
	m.tokens++
	token := "t" + strconv.Itoa(m.tokens)
	m.locks[key] = token
	return token, true, nil
}

func (m *memStore) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] == token {
		delete(m.locks, key)
	}
	return nil
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// seqIDs hands out "p1", "p2", ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) NextString() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return "p" + strconv.Itoa(s.n), nil
}

// fixedSlugs yields the given candidates in order, then errors.
func fixedSlugs(candidates ...string) SlugGenerator {
	var mu sync.Mutex
	i := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if i >= len(candidates) {
			return "", errors.New("no more candidates")
		}
		c := candidates[i]
		i++
		return c, nil
	}
}

var errStoreDown = errors.New("connection refused")
