package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"folio_server/core/domain"
	"folio_server/core/port/out"
	"folio_server/pkg/httputil"
	"folio_server/pkg/resilience"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

var ErrEmailNotVerified = errors.New("google account email is not verified")

// GoogleProvider signs people in with Google and reads their profile.
type GoogleProvider struct {
	config  *oauth2.Config
	client  *http.Client
	breaker *resilience.Breaker

	// overridable in tests
	userinfoEndpoint string
}

var _ out.IdentityProvider = (*GoogleProvider)(nil)

func NewGoogleProvider(clientID, clientSecret, redirectURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauth2api.UserinfoEmailScope,
				oauth2api.UserinfoProfileScope,
				oauth2api.OpenIDScope,
			},
			Endpoint: google.Endpoint,
		},
		client:  httputil.NewClient(httputil.IdentityClientConfig()),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerConfig("google")),
	}
}

func (g *GoogleProvider) Name() string {
	return "google"
}

func (g *GoogleProvider) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account"))
}

// Exchange trades the authorization code for a token and fetches the userinfo profile.
func (g *GoogleProvider) Exchange(ctx context.Context, code string) (*domain.Identity, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, g.client)

	var identity *domain.Identity
	err := g.breaker.Execute(func() error {
		token, err := g.config.Exchange(ctx, code)
		if err != nil {
			return fmt.Errorf("failed to exchange token: %w", err)
		}

		opts := []option.ClientOption{option.WithHTTPClient(g.config.Client(ctx, token))}
		if g.userinfoEndpoint != "" {
			opts = append(opts, option.WithEndpoint(g.userinfoEndpoint))
		}
		svc, err := oauth2api.NewService(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create oauth2 service: %w", err)
		}

		info, err := svc.Userinfo.Get().Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to get userinfo: %w", err)
		}
		identity, err = identityFromUserinfo(info)
		return err
	})
	if err != nil {
		return nil, err
	}
	return identity, nil
}

func identityFromUserinfo(info *oauth2api.Userinfo) (*domain.Identity, error) {
	if info.Email == "" {
		return nil, errors.New("userinfo has no email")
	}
	if info.VerifiedEmail != nil && !*info.VerifiedEmail {
		return nil, ErrEmailNotVerified
	}
	name := info.Name
	if name == "" {
		name = info.GivenName
	}
	return &domain.Identity{
		Subject: info.Id,
		Email:   info.Email,
		Name:    name,
		Picture: info.Picture,
	}, nil
}
