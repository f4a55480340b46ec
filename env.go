package oauthpopup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// EnvConfig is the configuration a Service can be built from, as read from
// environment variables.
type EnvConfig struct {
	ClientID            string        `env:"OAUTH_CLIENT_ID,required"`
	ClientSecret        string        `env:"OAUTH_CLIENT_SECRET,required"`
	ProviderName        string        `env:"OAUTH_PROVIDER"              envDefault:"github"`
	ProviderDisplayName string        `env:"OAUTH_PROVIDER_DISPLAY_NAME" envDefault:"GitHub"`
	AuthorizeURL        string        `env:"OAUTH_AUTHORIZE_URL"`
	TokenURL            string        `env:"OAUTH_TOKEN_URL"`
	Issuer              string        `env:"OAUTH_ISSUER"`
	Scopes              []string      `env:"OAUTH_SCOPES"                envDefault:"repo,user" envSeparator:","`
	Insecure            bool          `env:"OAUTH_INSECURE"              envDefault:"false"`
	VerifyState         bool          `env:"OAUTH_VERIFY_STATE"          envDefault:"false"`
	ExchangeTimeout     time.Duration `env:"OAUTH_EXCHANGE_TIMEOUT"      envDefault:"10s"`
}

// ParseEnv reads an EnvConfig from environ, or from the process
// environment if environ is nil.
func ParseEnv(environ map[string]string) (EnvConfig, error) {
	var cfg EnvConfig
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return EnvConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Provider returns the ProviderConfig described by c. If an issuer is set,
// the provider's endpoints are discovered from it using client; otherwise
// explicit URLs are used, falling back to GitHub's.
func (c EnvConfig) Provider(ctx context.Context, client *http.Client) (ProviderConfig, error) {
	endpoint := github.Endpoint
	switch {
	case c.Issuer != "":
		discovered, err := DiscoverEndpoint(ctx, c.Issuer, client)
		if err != nil {
			return ProviderConfig{}, err
		}
		endpoint = discovered
	case c.AuthorizeURL != "" || c.TokenURL != "":
		if c.AuthorizeURL == "" || c.TokenURL == "" {
			return ProviderConfig{}, errors.New("OAUTH_AUTHORIZE_URL and OAUTH_TOKEN_URL must be set together")
		}
		endpoint = oauth2.Endpoint{
			AuthURL:  c.AuthorizeURL,
			TokenURL: c.TokenURL,
		}
	}
	return ProviderConfig{
		Name:         c.ProviderName,
		DisplayName:  c.ProviderDisplayName,
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     endpoint,
	}, nil
}

// Options returns the Options described by c.
func (c EnvConfig) Options(client *http.Client) Options {
	var scopes []string
	for _, scope := range c.Scopes {
		scope = strings.TrimSpace(scope)
		if scope == "" {
			continue
		}
		scopes = append(scopes, scope)
	}
	return Options{
		Insecure:        c.Insecure,
		Scopes:          scopes,
		ExchangeTimeout: c.ExchangeTimeout,
		VerifyState:     c.VerifyState,
		HTTPClient:      client,
	}
}
