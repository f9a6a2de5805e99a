package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/promehq/go-prome-client/guard"
	"github.com/promehq/go-prome-client/nav"
)

func (s *Server) initRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)
	r.Use(newRateLimiter(requestsPerSecond, requestBurst).middleware)

	r.Get(nav.RouteHome, s.handleHome)
	r.Get(nav.RouteLogin, s.handleLoginPage)
	r.Get(nav.RouteError, s.handleErrorPage)
	r.Get(nav.RoutePricing, s.handlePricing)

	r.Post(RouteAPILogin, s.handleLogin)
	r.Post(RouteLogout, s.handleLogout)
	r.Get(nav.RouteLoginSuccess, s.handleCallback)
	r.Get(RouteLoginSuccessProvider, s.handleCallback)
	r.Get(RouteAuthorize, s.handleAuthorize)

	r.Group(func(gr chi.Router) {
		gr.Use(guard.AuthMiddleware(s.sessions))
		gr.Get(RouteAPIMe, s.handleMe)
		gr.Post(RouteAPISubscriptionRefresh, s.handleSubscriptionRefresh)
		gr.Post(RouteAPIPaymentCancel, s.handleCancelPayment)
		gr.Get(RoutePrompts, s.handlePrompt)
	})

	r.Group(func(gr chi.Router) {
		gr.Use(guard.PremiumMiddleware(s.sessions))
		gr.Get(RoutePromptsPremium, s.handlePremiumPrompts)
	})

	s.router = r
}
