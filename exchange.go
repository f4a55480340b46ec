package oauthpopup

import (
	"context"
	"errors"
	"net/url"

	"golang.org/x/oauth2"
)

// FailureKind says why a callback didn't produce a token. It's only used for
// logging; the opener window sees the same kind of message either way.
type FailureKind string

const (
	// KindProviderDeclined means the provider returned an error, either
	// on the callback's query string or from the token endpoint.
	KindProviderDeclined FailureKind = "provider_declined"

	// KindTransportError means the token endpoint couldn't be reached,
	// timed out, or answered with a non-2xx status and no error code.
	KindTransportError FailureKind = "transport_error"

	// KindUnexpectedError covers everything else, like a response that
	// can't be parsed or doesn't include a token.
	KindUnexpectedError FailureKind = "unexpected_error"

	// KindStateMismatch means the state the provider echoed back didn't
	// match the one the flow started with.
	KindStateMismatch FailureKind = "state_mismatch"
)

var (
	errStateMissing  = errors.New("state cookie missing, the authorization may have expired")
	errStateMismatch = errors.New("state parameter does not match")
)

// ExchangeError wraps a failed token exchange with its FailureKind.
type ExchangeError struct {
	Kind FailureKind
	Err  error
}

func (e *ExchangeError) Error() string {
	return e.Err.Error()
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

// exchange trades an authorization code for an access token. It makes
// exactly one request to the token endpoint, bounded by the exchange
// timeout. Any error returned is an *ExchangeError.
func (s Service) exchange(ctx context.Context, code, redirectURI string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Options.ExchangeTimeout)
	defer cancel()
	if s.Options.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, s.Options.HTTPClient)
	}

	token, err := s.oauthConfig(redirectURI).Exchange(ctx, code)
	if err != nil {
		return "", s.classify(err)
	}
	return token.AccessToken, nil
}

// classify decides, once, what kind of failure a token exchange error is.
func (s Service) classify(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.ErrorCode != "" {
			return &ExchangeError{
				Kind: KindProviderDeclined,
				Err: &ProviderError{
					Code:        retrieveErr.ErrorCode,
					Description: retrieveErr.ErrorDescription,
					URI:         retrieveErr.ErrorURI,
					provider:    s.Provider.DisplayName,
				},
			}
		}
		return &ExchangeError{Kind: KindTransportError, Err: err}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) || errors.Is(err, context.DeadlineExceeded) {
		return &ExchangeError{Kind: KindTransportError, Err: err}
	}
	return &ExchangeError{Kind: KindUnexpectedError, Err: err}
}
