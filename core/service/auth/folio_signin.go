package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/in"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"
	"folio_server/pkg/logger"
	"folio_server/pkg/metrics"
)

const (
	stateTTL        = 10 * time.Minute
	DefaultCallback = "/dashboard"
)

// Service runs the provider sign-in flow and first-sign-in provisioning.
type Service struct {
	provider   out.IdentityProvider
	states     out.StateStore
	users      out.UserStore
	portfolios out.PortfolioStore
	sessions   *Sessions
	now        func() time.Time
}

var _ in.AuthService = (*Service)(nil)

func NewService(
	provider out.IdentityProvider,
	states out.StateStore,
	users out.UserStore,
	portfolios out.PortfolioStore,
	sessions *Sessions,
) *Service {
	return &Service{
		provider:   provider,
		states:     states,
		users:      users,
		portfolios: portfolios,
		sessions:   sessions,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SafeCallback keeps only same-site absolute paths.
func SafeCallback(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return DefaultCallback
	}
	return raw
}

func (s *Service) BeginSignIn(ctx context.Context, callbackURL string) (string, error) {
	if s.provider == nil {
		return "", apperr.ConfigError("sign-in provider not configured")
	}
	state, err := generateState()
	if err != nil {
		return "", apperr.InternalWithError(err)
	}
	if err := s.states.StoreState(ctx, state, SafeCallback(callbackURL), stateTTL); err != nil {
		return "", apperr.PersistenceError("store oauth state", err)
	}
	return s.provider.AuthCodeURL(state), nil
}

func (s *Service) CompleteSignIn(ctx context.Context, state, code string) (*in.SignInResult, error) {
	if s.provider == nil {
		return nil, apperr.ConfigError("sign-in provider not configured")
	}
	if state == "" || code == "" {
		return nil, apperr.BadRequest("missing state or code")
	}

	callback, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		metrics.RecordSignIn(metrics.SignInFailed)
		if errors.Is(err, out.ErrNotFound) {
			return nil, apperr.InvalidToken("invalid or expired sign-in state")
		}
		return nil, apperr.PersistenceError("consume oauth state", err)
	}

	identity, err := s.provider.Exchange(ctx, code)
	if err != nil {
		metrics.RecordSignIn(metrics.SignInFailed)
		return nil, apperr.OAuthFailed(s.provider.Name(), err)
	}
	if identity.Email == "" {
		metrics.RecordSignIn(metrics.SignInFailed)
		return nil, apperr.OAuthFailed(s.provider.Name(), errors.New("identity has no email"))
	}

	user, created, err := s.provision(ctx, *identity)
	if err != nil {
		metrics.RecordSignIn(metrics.SignInFailed)
		return nil, err
	}

	token, session, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}

	if created {
		metrics.RecordSignIn(metrics.SignInNew)
	} else {
		metrics.RecordSignIn(metrics.SignInReturning)
	}
	logger.WithContext(ctx).WithFields(map[string]any{
		"email":   user.Email,
		"created": created,
	}).Info("sign-in completed")

	return &in.SignInResult{
		Token:       token,
		Session:     session,
		User:        user,
		Created:     created,
		CallbackURL: SafeCallback(callback),
	}, nil
}

// provision creates the user and default portfolio on first sign-in.
// An existing user record is returned as stored.
func (s *Service) provision(ctx context.Context, identity domain.Identity) (*domain.User, bool, error) {
	now := s.now()
	user := domain.NewUser(identity, now)

	created, err := s.users.CreateUserIfAbsent(ctx, user)
	if err != nil {
		return nil, false, apperr.PersistenceError("create user", err)
	}
	if !created {
		existing, err := s.users.GetUser(ctx, identity.Email)
		if err != nil {
			return nil, false, apperr.PersistenceError("load user", err)
		}
		user = existing
	}

	// Also repairs a user whose portfolio write never landed.
	if _, err := s.portfolios.CreatePortfolioIfAbsent(ctx, user.Email, domain.NewPortfolio(user, now)); err != nil {
		return nil, false, apperr.PersistenceError("create portfolio", err)
	}
	return user, created, nil
}

func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	return s.sessions.Parse(ctx, token)
}

func (s *Service) SignOut(ctx context.Context, session *domain.Session) error {
	return s.sessions.Revoke(ctx, session)
}

func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
