// Package providers builds the social-login authorize URLs the login entry
// point links to. The backend completes the code exchange; this client only
// needs to know where to send the user.
package providers

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// Provider identifies a supported social-login provider.
type Provider string

const (
	Google Provider = "google"
	Kakao  Provider = "kakao"
	Naver  Provider = "naver"
)

// Authorization endpoints per provider. Token endpoints are unused here
// (the backend exchanges the code) but kept for completeness.
var endpoints = map[Provider]oauth2.Endpoint{
	Google: {
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	},
	Kakao: {
		AuthURL:  "https://kauth.kakao.com/oauth/authorize",
		TokenURL: "https://kauth.kakao.com/oauth/token",
	},
	Naver: {
		AuthURL:  "https://nid.naver.com/oauth2.0/authorize",
		TokenURL: "https://nid.naver.com/oauth2.0/token",
	},
}

var defaultScopes = map[Provider][]string{
	Google: {"openid", "profile", "email"},
	Kakao:  {"profile_nickname", "account_email"},
	Naver:  {"name", "email"},
}

// Credentials holds one provider's OAuth client registration.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Registry maps providers to ready-to-use oauth2 configurations.
type Registry struct {
	configs map[Provider]*oauth2.Config
}

// UnknownProviderErr is returned for providers the registry has no
// credentials for.
var UnknownProviderErr = errors.New("unknown login provider")

// NewRegistry builds a Registry. redirectBase is the frontend origin; each
// provider's redirect URI is its /login/success/{provider} landing on that
// origin.
func NewRegistry(redirectBase string, creds map[Provider]Credentials) (*Registry, error) {
	if redirectBase == "" {
		return nil, errors.New("[NewRegistry] redirectBase is required")
	}

	r := &Registry{configs: make(map[Provider]*oauth2.Config, len(creds))}
	for provider, c := range creds {
		endpoint, ok := endpoints[provider]
		if !ok {
			return nil, errors.Wrapf(UnknownProviderErr, "[NewRegistry] %s", provider)
		}
		r.configs[provider] = &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			Endpoint:     endpoint,
			RedirectURL:  redirectBase + "/login/success/" + string(provider),
			Scopes:       defaultScopes[provider],
		}
	}
	return r, nil
}

// Providers lists the configured providers.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, 0, len(r.configs))
	for p := range r.configs {
		out = append(out, p)
	}
	return out
}

// AuthCodeURL returns the authorize URL for provider together with the
// CSRF state value embedded in it.
func (r *Registry) AuthCodeURL(provider Provider) (authURL, state string, err error) {
	cfg, ok := r.configs[provider]
	if !ok {
		return "", "", errors.Wrapf(UnknownProviderErr, "[Registry.AuthCodeURL] %s", provider)
	}
	state = uuid.New().String()
	return cfg.AuthCodeURL(state, oauth2.AccessTypeOffline), state, nil
}
