// Package server is the local HTTP gateway in front of the session
// lifecycle: it exposes login, logout, the OAuth redirect landing, and the
// guarded content routes over a chi router.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/apiclient"
	"github.com/promehq/go-prome-client/callback"
	"github.com/promehq/go-prome-client/internal/config"
	"github.com/promehq/go-prome-client/providers"
	"github.com/promehq/go-prome-client/session"
	"github.com/rs/zerolog"
)

// SessionService is the slice of the session manager the gateway needs.
type SessionService interface {
	Login(accessToken, refreshToken string, user session.User) (*session.Refinement, error)
	Logout()
	Snapshot() session.Snapshot
	RefreshSubscription() *session.Refinement
}

// AuthAPI is the slice of the backend client the gateway needs.
type AuthAPI interface {
	Login(ctx context.Context, loginID, password string) (*apiclient.LoginData, error)
	CancelPayment(ctx context.Context, reason string) error
}

type Server struct {
	env       string
	config    config.Config
	sessions  SessionService
	api       AuthAPI
	callbacks *callback.Handler
	registry  *providers.Registry
	router    chi.Router
	log       zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the gateway logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithProviderRegistry enables the social-login authorize routes.
func WithProviderRegistry(registry *providers.Registry) Option {
	return func(s *Server) { s.registry = registry }
}

func New(cfg config.Config, sessions SessionService, api AuthAPI, callbacks *callback.Handler, options ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if sessions == nil {
		return nil, errors.New("[Server New] session service is required")
	}
	if api == nil {
		return nil, errors.New("[Server New] auth api is required")
	}
	if callbacks == nil {
		return nil, errors.New("[Server New] callback handler is required")
	}

	s := &Server{
		env:       cfg.GetEnv(),
		config:    cfg,
		sessions:  sessions,
		api:       api,
		callbacks: callbacks,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}

	s.initRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
