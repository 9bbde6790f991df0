package connectors

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// AuthOAuth is the auth_method value shared by every OAuth-capable provider.
const AuthOAuth = "oauth"

// OAuthCredentials are the token fields of an oauth auth method.
// At least one of AccessToken or RefreshToken is required. A refresh token
// also needs the client credentials used to redeem it.
type OAuthCredentials struct {
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// Validate checks the oauth branch of an auth_method union.
func (c OAuthCredentials) Validate() error {
	if c.AccessToken == "" && c.RefreshToken == "" {
		return domain.NewConfigError("access_token", "oauth requires access_token or refresh_token")
	}
	if c.AccessToken == "" {
		if c.ClientID == "" {
			return domain.NewConfigError("client_id", "is required to redeem refresh_token")
		}
		if c.ClientSecret == "" {
			return domain.NewConfigError("client_secret", "is required to redeem refresh_token")
		}
	}
	return nil
}

// TokenSource returns a source that serves the access token and, when a
// refresh token is configured, refreshes it against endpoint.
func (c OAuthCredentials) TokenSource(ctx context.Context, endpoint oauth2.Endpoint, scopes ...string) oauth2.TokenSource {
	tok := &oauth2.Token{AccessToken: c.AccessToken, RefreshToken: c.RefreshToken}
	if c.RefreshToken == "" || c.ClientID == "" {
		return oauth2.StaticTokenSource(tok)
	}
	cfg := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
		Scopes:       scopes,
	}
	return cfg.TokenSource(ctx, tok)
}
