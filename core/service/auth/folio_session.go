package auth

import (
	"context"
	"errors"
	"time"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuer = "folio"

type sessionClaims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HS256 session tokens.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoker out.TokenRevoker
	now     func() time.Time
}

func NewSessions(secret string, ttl time.Duration, revoker out.TokenRevoker) *Sessions {
	return &Sessions{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
		now:     time.Now,
	}
}

// TTL is the lifetime of newly issued tokens.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for user.
func (s *Sessions) Issue(user *domain.User) (string, *domain.Session, error) {
	now := s.now()
	session := &domain.Session{
		TokenID:   uuid.NewString(),
		Email:     user.Email,
		Name:      user.Name,
		Image:     user.Image,
		ExpiresAt: now.Add(s.ttl).Truncate(time.Second),
	}

	claims := sessionClaims{
		Name:    session.Name,
		Picture: session.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.TokenID,
			Subject:   session.Email,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, apperr.InternalWithError(err)
	}
	return token, session, nil
}

// Parse verifies signature, expiry and revocation.
func (s *Sessions) Parse(ctx context.Context, token string) (*domain.Session, error) {
	if token == "" {
		return nil, apperr.Unauthorized("missing session")
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.TokenExpired()
		}
		return nil, apperr.InvalidToken("invalid session").WithError(err)
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, apperr.InvalidToken("incomplete session")
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperr.PersistenceError("check revocation", err)
		}
		if revoked {
			return nil, apperr.InvalidToken("session revoked")
		}
	}

	session := &domain.Session{
		TokenID: claims.ID,
		Email:   claims.Subject,
		Name:    claims.Name,
		Image:   claims.Picture,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}

// Revoke blacklists the session's token id until it would have expired anyway.
func (s *Sessions) Revoke(ctx context.Context, session *domain.Session) error {
	if session == nil || s.revoker == nil {
		return nil
	}
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, session.TokenID, ttl); err != nil {
		return apperr.PersistenceError("revoke session", err)
	}
	return nil
}
