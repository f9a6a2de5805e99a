package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/apiclient"
	"github.com/promehq/go-prome-client/callback"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/providers"
	"github.com/promehq/go-prome-client/session"
)

const stateCookieName = "prome_oauth_state"

type loginRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

type meResponse struct {
	State        session.State         `json:"state"`
	User         *session.User         `json:"user,omitempty"`
	Subscription *session.Subscription `json:"subscription,omitempty"`
}

func meFromSnapshot(snap session.Snapshot) meResponse {
	return meResponse{
		State:        snap.State,
		User:         snap.User,
		Subscription: snap.Subscription,
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":   s.config.GetAppName(),
		"state": s.sessions.Snapshot().State,
	})
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"login":    RouteAPILogin,
		"returnTo": r.URL.Query().Get("returnTo"),
	}
	if s.registry != nil {
		links := make(map[string]string)
		for _, p := range s.registry.Providers() {
			links[string(p)] = "/auth/" + string(p)
		}
		body["providers"] = links
	}
	s.writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleErrorPage(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"error":   r.URL.Query().Get("error"),
		"message": r.URL.Query().Get("message"),
	})
}

func (s *Server) handlePricing(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"premium": s.sessions.Snapshot().Premium(),
		"plans":   []string{"free", "premium"},
	})
}

// handleLogin signs in with backend credentials and commits the returned
// token pair to the session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed login request", http.StatusBadRequest)
		return
	}

	data, err := s.api.Login(r.Context(), req.LoginID, req.Password)
	if err != nil {
		s.log.Warn().Err(err).Str("loginId", req.LoginID).Msg("login failed")
		s.writeAPIError(w, err)
		return
	}

	user := callback.UserFromToken(data.AccessToken)
	if user.LoginID == "" {
		user.LoginID = req.LoginID
	}

	refinement, err := s.sessions.Login(data.AccessToken, data.RefreshToken, user)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to commit login session")
		http.Error(w, "could not persist session", http.StatusInternalServerError)
		return
	}
	if refinement != nil {
		if _, err := refinement.Await(r.Context()); err != nil {
			s.log.Debug().Err(err).Msg("subscription refinement cut short")
		}
	}

	s.writeJSON(w, http.StatusOK, meFromSnapshot(s.sessions.Snapshot()))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// handleCallback hands the OAuth redirect landing to the callback handler
// and translates its outcome into an HTTP redirect.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	switch s.callbacks.Process(r.URL) {
	case callback.OutcomeRejected:
		http.Redirect(w, r, nav.RouteError, http.StatusSeeOther)
	default:
		http.Redirect(w, r, nav.RouteHome, http.StatusSeeOther)
	}
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "social login not configured", http.StatusNotFound)
		return
	}

	provider := providers.Provider(chi.URLParam(r, "provider"))
	authURL, state, err := s.registry.AuthCodeURL(provider)
	if err != nil {
		if errors.Is(err, providers.UnknownProviderErr) {
			http.Error(w, "unknown provider", http.StatusNotFound)
			return
		}
		http.Error(w, "authorize failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, authURL, http.StatusFound)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, meFromSnapshot(s.sessions.Snapshot()))
}

func (s *Server) handleSubscriptionRefresh(w http.ResponseWriter, r *http.Request) {
	refinement := s.sessions.RefreshSubscription()
	if _, err := refinement.Await(r.Context()); err != nil {
		http.Error(w, "refresh timed out", http.StatusGatewayTimeout)
		return
	}
	s.writeJSON(w, http.StatusOK, meFromSnapshot(s.sessions.Snapshot()))
}

// handleCancelPayment cancels the pending payment upstream and then
// re-resolves the subscription so the session reflects the cancellation.
func (s *Server) handleCancelPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional; cancellation without a reason is fine.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if err := s.api.CancelPayment(r.Context(), req.Reason); err != nil {
		s.log.Error().Err(err).Msg("payment cancellation failed")
		s.writeAPIError(w, err)
		return
	}

	if _, err := s.sessions.RefreshSubscription().Await(r.Context()); err != nil {
		s.log.Debug().Err(err).Msg("post-cancel refresh cut short")
	}
	s.writeJSON(w, http.StatusOK, meFromSnapshot(s.sessions.Snapshot()))
}

func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"prompt": chi.URLParam(r, "id"),
	})
}

func (s *Server) handlePremiumPrompts(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"prompts": "premium",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeAPIError surfaces backend failures with their upstream status where
// one exists, 502 otherwise.
func (s *Server) writeAPIError(w http.ResponseWriter, err error) {
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		http.Error(w, apiErr.Message, apiErr.Status)
		return
	}
	http.Error(w, "upstream request failed", http.StatusBadGateway)
}
