package main

import (
	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/apiclient"
	"github.com/promehq/go-prome-client/callback"
	"github.com/promehq/go-prome-client/internal/config"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/providers"
	"github.com/promehq/go-prome-client/session"
	"github.com/promehq/go-prome-client/tokenstore"
	"github.com/rs/zerolog"
)

// app wires the full client stack: config, durable token store, backend
// client, session manager, and callback handler.
type app struct {
	cfg       config.Config
	store     tokenstore.Store
	badger    *tokenstore.BadgerStore
	api       *apiclient.Client
	sessions  *session.Manager
	callbacks *callback.Handler
	registry  *providers.Registry
	log       zerolog.Logger
}

func newApp() (*app, error) {
	log := newLogger()

	var cfg config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return nil, errors.Wrap(err, "[newApp] loading config")
		}
	} else {
		cfg = config.New()
	}

	badger, err := tokenstore.OpenBadger(cfg.GetStorePath())
	if err != nil {
		return nil, errors.Wrap(err, "[newApp] opening token store")
	}

	var store tokenstore.Store = badger
	if secret := cfg.GetSealSecret(); secret != "" {
		store, err = tokenstore.NewSealed(badger, []byte(secret), []byte(cfg.GetSealSalt()))
		if err != nil {
			badger.Close()
			return nil, errors.Wrap(err, "[newApp] sealing token store")
		}
	}

	navigator := nav.NavigatorFunc(func(route string) {
		log.Info().Str("route", route).Msg("navigate")
	})

	api, err := apiclient.New(cfg.GetAPIBaseURL(), store, navigator,
		apiclient.WithLogger(log),
		apiclient.WithTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		badger.Close()
		return nil, errors.Wrap(err, "[newApp] building api client")
	}

	sessions, err := session.NewManager(store, api,
		session.WithLogger(log),
		session.WithFetchTimeout(cfg.GetRequestTimeout()))
	if err != nil {
		badger.Close()
		return nil, errors.Wrap(err, "[newApp] building session manager")
	}
	api.OnSessionExpired(sessions.SessionExpired)

	callbacks := callback.New(sessions, navigator,
		callback.WithLogger(log),
		callback.WithAllowedHosts(cfg.GetFrontendOrigin()))

	a := &app{
		cfg:       cfg,
		store:     store,
		badger:    badger,
		api:       api,
		sessions:  sessions,
		callbacks: callbacks,
		log:       log,
	}

	if creds := providerCredentials(cfg); len(creds) > 0 {
		registry, err := providers.NewRegistry("https://"+cfg.GetFrontendOrigin(), creds)
		if err != nil {
			badger.Close()
			return nil, errors.Wrap(err, "[newApp] building provider registry")
		}
		a.registry = registry
	}

	return a, nil
}

func (a *app) Close() error {
	return a.badger.Close()
}

func providerCredentials(cfg config.Config) map[providers.Provider]providers.Credentials {
	creds := make(map[providers.Provider]providers.Credentials)
	for name, c := range cfg.GetProviderCredentials() {
		creds[providers.Provider(name)] = providers.Credentials{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
		}
	}
	return creds
}
