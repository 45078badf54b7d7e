package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	identity *domain.Identity
	err      error
}

func (f *fakeProvider) Name() string { return "google" }
func (f *fakeProvider) AuthCodeURL(state string) string {
	return "https://accounts.example/auth?state=" + state
}
func (f *fakeProvider) Exchange(context.Context, string) (*domain.Identity, error) {
	return f.identity, f.err
}

type memKV struct {
	mu         sync.Mutex
	states     map[string]string
	revoked    map[string]time.Duration
	users      map[string]*domain.User
	portfolios map[string]*domain.Portfolio
}

func newMemKV() *memKV {
	return &memKV{
		states:     map[string]string{},
		revoked:    map[string]time.Duration{},
		users:      map[string]*domain.User{},
		portfolios: map[string]*domain.Portfolio{},
	}
}

func (m *memKV) StoreState(_ context.Context, state, cb string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = cb
	return nil
}

func (m *memKV) ConsumeState(_ context.Context, state string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cb, ok := m.states[state]
	if !ok {
		return "", out.ErrNotFound
	}
	delete(m.states, state)
	return cb, nil
}

func (m *memKV) Revoke(_ context.Context, id string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[id] = ttl
	return nil
}

func (m *memKV) IsRevoked(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[id]
	return ok, nil
}

func (m *memKV) GetUser(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, out.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (m *memKV) CreateUserIfAbsent(_ context.Context, u *domain.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return false, nil
	}
	c := *u
	m.users[u.Email] = &c
	return true, nil
}

func (m *memKV) GetPortfolio(_ context.Context, owner string) (*domain.Portfolio, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.portfolios[owner]
	if !ok {
		return nil, out.ErrNotFound
	}
	return p.Clone(), nil
}

func (m *memKV) SavePortfolio(_ context.Context, owner string, p *domain.Portfolio) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.portfolios[owner] = p.Clone()
	return nil
}

func (m *memKV) CreatePortfolioIfAbsent(_ context.Context, owner string, p *domain.Portfolio) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.portfolios[owner]; ok {
		return false, nil
	}
	m.portfolios[owner] = p.Clone()
	return true, nil
}

func (m *memKV) ScanOwners(context.Context, int, func([]string) error) error { return nil }

func newTestAuth(identity *domain.Identity) (*Service, *memKV) {
	kv := newMemKV()
	sessions := NewSessions("test-secret", time.Hour, kv)
	return NewService(&fakeProvider{identity: identity}, kv, kv, kv, sessions), kv
}

func signIn(t *testing.T, svc *Service, kv *memKV, callback string) *in.SignInResult {
	t.Helper()
	ctx := context.Background()
	_, err := svc.BeginSignIn(ctx, callback)
	require.NoError(t, err)
	require.Len(t, kv.states, 1)

	var state string
	for s := range kv.states {
		state = s
	}
	res, err := svc.CompleteSignIn(ctx, state, "code")
	require.NoError(t, err)
	return res
}

func TestSignIn_FirstTimeProvisions(t *testing.T) {
	svc, kv := newTestAuth(&domain.Identity{Subject: "g-1", Email: "a@x.com", Name: "Ann", Picture: "https://img/ann"})

	res := signIn(t, svc, kv, "/dashboard/edit")
	assert.True(t, res.Created)
	assert.Equal(t, "/dashboard/edit", res.CallbackURL)

	require.Contains(t, kv.users, "a@x.com")
	assert.Equal(t, "Ann", kv.users["a@x.com"].Name)

	p := kv.portfolios["a@x.com"]
	require.NotNil(t, p)
	assert.False(t, p.Published)
	assert.Empty(t, p.Slug)
	assert.Equal(t, domain.TemplateMinimal, p.Template)
	assert.Equal(t, "Ann", p.Data.Name)
	assert.Empty(t, kv.states, "state is single use")
}

func TestSignIn_ReturningUserUnchanged(t *testing.T) {
	svc, kv := newTestAuth(&domain.Identity{Subject: "g-1", Email: "a@x.com", Name: "Ann Renamed"})
	kv.users["a@x.com"] = &domain.User{ID: "g-1", Email: "a@x.com", Name: "Ann"}
	existing := &domain.Portfolio{UserID: "g-1", Template: domain.TemplateModern, Published: true, Slug: "abc"}
	kv.portfolios["a@x.com"] = existing

	res := signIn(t, svc, kv, "")
	assert.False(t, res.Created)
	assert.Equal(t, DefaultCallback, res.CallbackURL)
	assert.Equal(t, "Ann", res.User.Name)
	assert.Equal(t, "abc", kv.portfolios["a@x.com"].Slug)
	assert.Equal(t, domain.TemplateModern, kv.portfolios["a@x.com"].Template)
}

func TestCompleteSignIn_Failures(t *testing.T) {
	ctx := context.Background()

	svc, _ := newTestAuth(&domain.Identity{Email: "a@x.com"})
	_, err := svc.CompleteSignIn(ctx, "unknown", "code")
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))

	_, err = svc.CompleteSignIn(ctx, "", "code")
	assert.True(t, apperr.HasCode(err, apperr.CodeBadRequest))

	kv := newMemKV()
	failing := NewService(&fakeProvider{err: errors.New("bad code")}, kv, kv, kv, NewSessions("s", time.Hour, kv))
	kv.states["st"] = "/dashboard"
	_, err = failing.CompleteSignIn(ctx, "st", "code")
	assert.True(t, apperr.HasCode(err, apperr.CodeOAuthFailed))
	assert.Empty(t, kv.users)
}

func TestSafeCallback(t *testing.T) {
	tests := map[string]string{
		"":                   DefaultCallback,
		"/dashboard":         "/dashboard",
		"/dashboard?tab=2":   "/dashboard?tab=2",
		"https://evil.test/": DefaultCallback,
		"//evil.test":        DefaultCallback,
		"/\\evil.test":       DefaultCallback,
	}
	for raw, want := range tests {
		if got := SafeCallback(raw); got != want {
			t.Errorf("SafeCallback(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestSessions_RoundTripAndRevoke(t *testing.T) {
	svc, kv := newTestAuth(&domain.Identity{Subject: "g-1", Email: "a@x.com", Name: "Ann", Picture: "pic"})
	ctx := context.Background()
	res := signIn(t, svc, kv, "/")

	session, err := svc.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", session.Email)
	assert.Equal(t, "Ann", session.Name)
	assert.Equal(t, "pic", session.Image)

	require.NoError(t, svc.SignOut(ctx, session))
	assert.Contains(t, kv.revoked, session.TokenID)

	_, err = svc.Authenticate(ctx, res.Token)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))
}

func TestSessions_Rejects(t *testing.T) {
	kv := newMemKV()
	sessions := NewSessions("secret-a", time.Hour, kv)
	token, _, err := sessions.Issue(&domain.User{Email: "a@x.com"})
	require.NoError(t, err)

	other := NewSessions("secret-b", time.Hour, kv)
	_, err = other.Parse(context.Background(), token)
	assert.True(t, apperr.HasCode(err, apperr.CodeInvalidToken))

	sessions.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = sessions.Parse(context.Background(), token)
	assert.True(t, apperr.HasCode(err, apperr.CodeTokenExpired))

	_, err = sessions.Parse(context.Background(), "")
	assert.True(t, apperr.HasCode(err, apperr.CodeUnauthorized))
}
