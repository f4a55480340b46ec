package oauthpopup

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const (
	defaultProviderName        = "github"
	defaultProviderDisplayName = "GitHub"
)

// ProviderConfig describes the OAuth2 provider the popup authorizes against.
// It is built once at startup and only ever read afterwards.
type ProviderConfig struct {
	// Name identifies the provider in the messages sent to the opener
	// window, e.g. "authorizing:github".
	Name string

	// DisplayName is used when building human readable error messages.
	DisplayName string

	ClientID     string
	ClientSecret string

	// Endpoint holds the provider's authorize and token URLs.
	Endpoint oauth2.Endpoint
}

// GitHubProvider returns a ProviderConfig for github.com.
func GitHubProvider(clientID, clientSecret string) ProviderConfig {
	return ProviderConfig{
		Name:         defaultProviderName,
		DisplayName:  defaultProviderDisplayName,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     github.Endpoint,
	}
}

// DiscoverEndpoint looks up the authorize and token URLs of a provider that
// publishes OpenID Connect discovery metadata at issuer. If client is nil,
// http.DefaultClient is used.
func DiscoverEndpoint(ctx context.Context, issuer string, client *http.Client) (oauth2.Endpoint, error) {
	if client != nil {
		ctx = oidc.ClientContext(ctx, client)
	}
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return oauth2.Endpoint{}, fmt.Errorf("discovering provider %q: %w", issuer, err)
	}
	return provider.Endpoint(), nil
}

// withDefaults fills in any unset names.
func (p ProviderConfig) withDefaults() ProviderConfig {
	if p.Name == "" {
		p.Name = defaultProviderName
	}
	if p.DisplayName == "" {
		p.DisplayName = p.Name
	}
	return p
}

// ProviderError is the error envelope an OAuth2 provider returns in place of
// an authorization code or a token.
type ProviderError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
	URI         string `json:"error_uri,omitempty"`

	// provider is the DisplayName of the provider that sent the error.
	provider string
}

func (p *ProviderError) Error() string {
	parts := []string{p.provider + " Error: " + p.Code}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	if p.URI != "" {
		parts = append(parts, p.URI)
	}
	return strings.Join(parts, " | ")
}

// providerErrorFromQuery returns the ProviderError carried by the query
// string of a callback request, or nil if the provider didn't decline.
func providerErrorFromQuery(provider string, get func(string) string) *ProviderError {
	code := get("error")
	if code == "" {
		return nil
	}
	return &ProviderError{
		Code:        code,
		Description: get("error_description"),
		URI:         get("error_uri"),
		provider:    provider,
	}
}
