// Package callback consumes the tokens delivered by an OAuth login
// redirect. Each redirect landing is processed exactly once: tokens are
// committed to the session a single time even if the landing is re-entered
// through back navigation or a re-render.
package callback

import (
	"net/url"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/session"
	"github.com/rs/zerolog"
)

// Outcome reports how a redirect landing was handled.
type Outcome string

const (
	// OutcomeCompleted means tokens were extracted, committed, and the
	// application was sent home.
	OutcomeCompleted Outcome = "completed"
	// OutcomeAlreadyProcessed means the guard flag was set; the landing
	// was ignored and the application sent home.
	OutcomeAlreadyProcessed Outcome = "already_processed"
	// OutcomeRejected means the landing carried an error, landed on the
	// wrong origin, lacked tokens, or could not be persisted; the
	// application was sent to the error route.
	OutcomeRejected Outcome = "rejected"
)

// Default pause between committing the session and navigating home, giving
// storage writes time to settle before the full navigation.
const defaultSettleDelay = 100 * time.Millisecond

// SessionWriter is the slice of the session manager the handler needs.
type SessionWriter interface {
	Login(accessToken, refreshToken string, user session.User) (*session.Refinement, error)
}

// Handler processes OAuth redirect landings. The re-entry guard flag is
// local to the handler instance rather than durable storage, so stale
// reloads and other tabs cannot observe it.
type Handler struct {
	sessions     SessionWriter
	navigator    nav.Navigator
	log          zerolog.Logger
	allowedHosts map[string]struct{}
	settleDelay  time.Duration
	sleep        func(time.Duration)

	lock      sync.Mutex
	processed bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the handler logger.
func WithLogger(log zerolog.Logger) Option {
	return func(h *Handler) { h.log = log }
}

// WithAllowedHosts restricts processing to redirect URLs on the given
// hostnames. A landing on any other host (say, the backend domain instead
// of the frontend) aborts with a diagnostic instead of extracting tokens.
func WithAllowedHosts(hosts ...string) Option {
	return func(h *Handler) {
		h.allowedHosts = make(map[string]struct{}, len(hosts))
		for _, host := range hosts {
			h.allowedHosts[host] = struct{}{}
		}
	}
}

// WithSettleDelay overrides the pause before the final navigation home.
func WithSettleDelay(d time.Duration) Option {
	return func(h *Handler) { h.settleDelay = d }
}

// WithSleeper replaces the sleep function (primarily for testing).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(h *Handler) { h.sleep = sleep }
}

// New creates a callback Handler committing into sessions and navigating
// via navigator.
func New(sessions SessionWriter, navigator nav.Navigator, options ...Option) *Handler {
	h := &Handler{
		sessions:    sessions,
		navigator:   navigator,
		log:         zerolog.Nop(),
		settleDelay: defaultSettleDelay,
		sleep:       time.Sleep,
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

// Process consumes one redirect landing URL. Navigation happens as a side
// effect; the returned Outcome says which branch ran.
func (h *Handler) Process(u *url.URL) Outcome {
	h.lock.Lock()
	if h.processed {
		h.processed = false // cleared exactly once
		h.lock.Unlock()
		h.log.Debug().Msg("redirect already processed, navigating home")
		h.navigator.NavigateTo(nav.RouteHome)
		return OutcomeAlreadyProcessed
	}
	h.lock.Unlock()

	query := u.Query()

	if errParam := query.Get("error"); errParam != "" {
		h.log.Warn().Str("error", errParam).Msg("login redirect carried an error")
		h.navigateError(errParam, query.Get("message"))
		return OutcomeRejected
	}

	if len(h.allowedHosts) > 0 && u.Hostname() != "" {
		if _, ok := h.allowedHosts[u.Hostname()]; !ok {
			h.log.Warn().Str("host", u.Hostname()).Msg("login redirect landed on wrong origin")
			h.navigateError("wrong_origin", "login redirect landed on "+u.Hostname())
			return OutcomeRejected
		}
	}

	accessToken, refreshToken := extractTokens(query)
	if accessToken == "" {
		h.navigateError("missing_tokens", "login redirect carried no tokens")
		return OutcomeRejected
	}

	h.lock.Lock()
	h.processed = true
	h.lock.Unlock()

	user := UserFromToken(accessToken)
	if _, err := h.sessions.Login(accessToken, refreshToken, user); err != nil {
		h.lock.Lock()
		h.processed = false
		h.lock.Unlock()
		h.log.Error().Err(err).Msg("failed to commit login session")
		h.navigateError("storage_failure", "could not persist login session")
		return OutcomeRejected
	}

	h.sleep(h.settleDelay)
	h.navigator.NavigateTo(nav.RouteHome)

	h.lock.Lock()
	h.processed = false
	h.lock.Unlock()
	return OutcomeCompleted
}

func (h *Handler) navigateError(code, message string) {
	values := url.Values{}
	values.Set("error", code)
	if message != "" {
		values.Set("message", message)
	}
	h.navigator.NavigateTo(nav.RouteError + "?" + values.Encode())
}

// extractTokens pulls the token pair from the redirect query. Some
// providers deliver a single "token" parameter instead of the pair.
func extractTokens(query url.Values) (accessToken, refreshToken string) {
	accessToken = query.Get("accessToken")
	refreshToken = query.Get("refreshToken")
	if accessToken == "" {
		accessToken = query.Get("token")
	}
	return accessToken, refreshToken
}

// UserFromToken derives the user record from the access token's claims.
// The token is minted by the backend and only echoed back to it, so the
// claims are read without signature verification; a token that fails the
// backend's checks will 401 on first use anyway.
func UserFromToken(raw string) session.User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return session.User{}
	}

	user := session.User{}
	if v, ok := claims["loginId"].(string); ok {
		user.LoginID = v
	} else if v, ok := claims["sub"].(string); ok {
		user.LoginID = v
	}
	if v, ok := claims["nickname"].(string); ok {
		user.DisplayName = v
	} else if v, ok := claims["name"].(string); ok {
		user.DisplayName = v
	}
	if v, ok := claims["isPremium"].(bool); ok {
		user.IsPremium = v
	}
	return user
}
