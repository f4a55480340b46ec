// Package oauthpopup provides an `http.Handler` that runs the server side of
// an OAuth2 authorization code flow inside a browser popup.
//
// A browser-based editor opens a popup at the `/auth` endpoint, which
// redirects to the provider's consent screen. The provider sends the user
// back to the `/callback` endpoint, which trades the authorization code for
// an access token using the client secret, something the browser must never
// see. The callback answers with a small HTML document that hands the
// outcome to the window that opened the popup using `window.postMessage`,
// then tells the user it is closing.
//
// The handler keeps no state between requests. Everything the callback needs
// is recomputed from the injected configuration and the request's Host
// header, so it can run on as many instances as you like.
//
// Use this package by creating a `Service` with `NewService` and calling its
// `Server` method to get the `http.Handler`. The `http.Handler` should be
// served through a muxer using the same path as the `prefix` passed to
// `Server`.
package oauthpopup
