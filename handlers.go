package oauthpopup

import (
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	uuid "github.com/hashicorp/go-uuid"
	"golang.org/x/oauth2"
	yall "yall.in"
)

const (
	// DefaultExchangeTimeout bounds the call to the provider's token
	// endpoint when Options.ExchangeTimeout is unset.
	DefaultExchangeTimeout = 10 * time.Second

	stateBytes      = 6
	stateCookieName = "__oauth_popup_state__"
	stateCookieTTL  = 10 * time.Minute
)

// DefaultScopes are requested when Options.Scopes is empty.
var DefaultScopes = []string{"repo", "user"}

// Options controls how a Service builds its redirects.
type Options struct {
	// Insecure makes redirect URIs use http instead of https. Only
	// useful for local development.
	Insecure bool

	// Scopes to request from the provider. They're sent comma
	// separated, the way GitHub expects them.
	Scopes []string

	// ExchangeTimeout bounds the token exchange. Defaults to
	// DefaultExchangeTimeout.
	ExchangeTimeout time.Duration

	// VerifyState makes the Service remember the state it sent to the
	// provider in a short-lived cookie and reject callbacks that don't
	// echo it back.
	VerifyState bool

	// HTTPClient is used to call the token endpoint. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client
}

type Service struct {
	Provider ProviderConfig
	Options  Options
	Log      *yall.Logger

	// prefix is the path the Service is served under, set by Server.
	prefix string
}

// NewService returns a Service for provider, filling in defaults for any
// unset options.
func NewService(provider ProviderConfig, opts Options, log *yall.Logger) Service {
	if len(opts.Scopes) < 1 {
		opts.Scopes = DefaultScopes
	}
	if opts.ExchangeTimeout <= 0 {
		opts.ExchangeTimeout = DefaultExchangeTimeout
	}
	return Service{
		Provider: provider.withDefaults(),
		Options:  opts,
		Log:      log,
	}
}

// callbackPath is the path the provider redirects back to.
func (s Service) callbackPath() string {
	return strings.TrimSuffix(s.prefix, "/") + "/callback"
}

// redirectURI builds the callback URL for the host the request came in on.
// The authorize and callback endpoints both use it, and the provider
// rejects the exchange unless the two match exactly.
func (s Service) redirectURI(r *http.Request) string {
	scheme := "https"
	if s.Options.Insecure {
		scheme = "http"
	}
	return scheme + "://" + r.Host + s.callbackPath()
}

// oauthConfig returns the oauth2.Config used for a single request.
func (s Service) oauthConfig(redirectURI string) *oauth2.Config {
	endpoint := s.Provider.Endpoint
	// send credentials in the body, so the exchange is a single request
	// instead of x/oauth2 probing auth styles
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &oauth2.Config{
		ClientID:     s.Provider.ClientID,
		ClientSecret: s.Provider.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  redirectURI,
	}
}

// randomState returns a new random value for the state parameter.
func randomState() (string, error) {
	b, err := uuid.GenerateRandomBytes(stateBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// handle the authorization endpoint
// this endpoint is where the popup starts, and it sends the popup on to the
// provider's consent screen.
func (s Service) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	log := yall.FromContext(r.Context()).WithField("host", r.Host)
	log.Debug("starting authorization")

	state, err := randomState()
	if err != nil {
		log.WithError(err).Error("Error generating state")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if s.Options.VerifyState {
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookieName,
			Value:    state,
			Path:     s.callbackPath(),
			MaxAge:   int(stateCookieTTL / time.Second),
			Secure:   !s.Options.Insecure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	u := s.oauthConfig(s.redirectURI(r)).AuthCodeURL(state,
		oauth2.SetAuthURLParam("scope", strings.Join(s.Options.Scopes, ",")))

	w.Header().Set("Location", u)
	w.WriteHeader(http.StatusMovedPermanently)
}

// checkState compares the state the provider echoed back against the one we
// stored in a cookie when the flow started, and clears the cookie.
func (s Service) checkState(w http.ResponseWriter, r *http.Request) error {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     s.callbackPath(),
		MaxAge:   -1,
		Secure:   !s.Options.Insecure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return errStateMissing
	}
	got := r.URL.Query().Get("state")
	if got == "" || got != cookie.Value {
		return errStateMismatch
	}
	return nil
}

// handle the callback endpoint
// this endpoint is where the provider sends the popup back to, with either
// an authorization code or an error. It always answers with a relay document.
func (s Service) handleCallback(w http.ResponseWriter, r *http.Request) {
	log := yall.FromContext(r.Context()).WithField("host", r.Host)
	log.Debug("finishing authorization")

	result := s.callbackResult(w, r)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	err := RenderRelay(w, s.Provider.Name, result)
	if err != nil {
		log.WithError(err).Error("Error writing relay document")
	}
}

// callbackResult works out what to tell the opener window.
func (s Service) callbackResult(w http.ResponseWriter, r *http.Request) Result {
	log := yall.FromContext(r.Context())
	query := r.URL.Query()

	if provErr := providerErrorFromQuery(s.Provider.DisplayName, query.Get); provErr != nil {
		log.WithField("kind", KindProviderDeclined).WithField("error", provErr.Code).Debug("Provider declined authorization")
		return Failure(provErr)
	}

	if s.Options.VerifyState {
		if err := s.checkState(w, r); err != nil {
			log.WithField("kind", KindStateMismatch).WithError(err).Debug("Error verifying state")
			return Failure(err)
		}
	}

	token, err := s.exchange(r.Context(), query.Get("code"), s.redirectURI(r))
	if err != nil {
		var exErr *ExchangeError
		if errors.As(err, &exErr) {
			log = log.WithField("kind", exErr.Kind)
		}
		log.WithError(err).Error("Error exchanging authorization code")
		return Failure(err)
	}
	return Success(Token{
		AccessToken: token,
		Provider:    s.Provider.Name,
	})
}
