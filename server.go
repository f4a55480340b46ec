package oauthpopup

import (
	"net/http"
	"strings"

	"darlinggo.co/trout/v2"
	yall "yall.in"
)

func (s Service) logEndpoint(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := s.Log
		if log == nil {
			log = yall.FromContext(r.Context())
		}
		log = log.WithField("endpoint", r.Header.Get("Trout-Pattern")).
			WithField("method", r.Method).
			WithField("ip", getIP(r))
		for k, v := range trout.RequestVars(r) {
			log = log.WithField("url."+strings.ToLower(k), v)
		}
		r = r.WithContext(yall.InContext(r.Context(), log))
		log.Debug("serving request")
		h.ServeHTTP(w, r)
		log.Debug("served request")
	})
}

// Server returns the handler for the popup flow, with the authorize
// endpoint at prefix+"/auth" and the callback at prefix+"/callback". The
// callback path is also what gets sent to the provider as the redirect URI,
// so it must be registered with the provider as well.
func (s Service) Server(prefix string) http.Handler {
	s.prefix = prefix

	var router trout.Router
	router.SetPrefix(prefix)

	router.Endpoint("/auth").Methods("GET").
		Handler(s.logEndpoint(http.HandlerFunc(
			s.handleAuthorize)))
	router.Endpoint("/callback").Methods("GET").
		Handler(s.logEndpoint(http.HandlerFunc(
			s.handleCallback)))

	return router
}
