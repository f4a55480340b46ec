// Command oauthpopupd serves the OAuth2 popup flow under /api, configured
// from the environment.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	yall "yall.in"
	"yall.in/colour"

	"lockbox.dev/oauthpopup"
)

const (
	shutdownTimeout = 10 * time.Second
)

func main() {
	logLevel := strings.ToUpper(os.Getenv("LOG_LEVEL"))
	if logLevel == "" {
		logLevel = "INFO"
	}
	log := yall.New(colour.New(os.Stdout, yall.Severity(logLevel)))

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := oauthpopup.ParseEnv(nil)
	if err != nil {
		log.WithError(err).Error("Error loading configuration")
		os.Exit(1)
	}

	client := &http.Client{Timeout: cfg.ExchangeTimeout}
	provider, err := cfg.Provider(ctx, client)
	if err != nil {
		log.WithError(err).Error("Error configuring provider")
		os.Exit(1)
	}

	svc := oauthpopup.NewService(provider, cfg.Options(client), log)

	mux := http.NewServeMux()
	mux.Handle("/api/", svc.Server("/api"))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ExchangeTimeout + 5*time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Error shutting down server")
		}
	}()

	log.WithField("addr", addr).WithField("provider", provider.Name).Info("serving")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Error serving")
		os.Exit(1)
	}
}
