package in

import (
	"context"

	"folio_server/core/domain"
)

type AuthService interface {
	// BeginSignIn stores a one-time state and returns the provider consent URL.
	BeginSignIn(ctx context.Context, callbackURL string) (string, error)

	// CompleteSignIn validates state, exchanges code, runs first-sign-in provisioning
	// and returns a signed session token plus the callback URL to return to.
	CompleteSignIn(ctx context.Context, state, code string) (*SignInResult, error)

	// Authenticate parses and checks a session token.
	Authenticate(ctx context.Context, token string) (*domain.Session, error)

	SignOut(ctx context.Context, session *domain.Session) error
}

type SignInResult struct {
	Token       string
	Session     *domain.Session
	User        *domain.User
	Created     bool
	CallbackURL string
}
