package server_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/promehq/go-prome-client/apiclient"
	"github.com/promehq/go-prome-client/callback"
	"github.com/promehq/go-prome-client/internal/config"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/nav/navfakes"
	"github.com/promehq/go-prome-client/providers"
	"github.com/promehq/go-prome-client/server"
	"github.com/promehq/go-prome-client/session"
	"github.com/stretchr/testify/require"
)

// fakeSessions stands in for the session manager.
type fakeSessions struct {
	snap       session.Snapshot
	loginCalls int
	loggedOut  bool
}

func (f *fakeSessions) Login(accessToken, refreshToken string, user session.User) (*session.Refinement, error) {
	f.loginCalls++
	f.snap = session.Snapshot{
		State:       session.StateAuthenticated,
		AccessToken: accessToken,
		User:        &user,
	}
	return session.ResolvedRefinement(session.Subscription{}), nil
}

func (f *fakeSessions) Logout() {
	f.loggedOut = true
	f.snap = session.Snapshot{State: session.StateAnonymous}
}

func (f *fakeSessions) Snapshot() session.Snapshot { return f.snap }

func (f *fakeSessions) RefreshSubscription() *session.Refinement {
	return session.ResolvedRefinement(session.Subscription{IsPremium: true})
}

// fakeAuthAPI stands in for the backend client.
type fakeAuthAPI struct {
	loginErr     error
	cancelCalled bool
	cancelReason string
}

func (f *fakeAuthAPI) Login(ctx context.Context, loginID, password string) (*apiclient.LoginData, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &apiclient.LoginData{AccessToken: "T1", RefreshToken: "R1"}, nil
}

func (f *fakeAuthAPI) CancelPayment(ctx context.Context, reason string) error {
	f.cancelCalled = true
	f.cancelReason = reason
	return nil
}

type serverFixture struct {
	sessions *fakeSessions
	api      *fakeAuthAPI
	server   *server.Server
}

func setupServerFixture(t *testing.T, options ...server.Option) *serverFixture {
	t.Helper()

	f := &serverFixture{
		sessions: &fakeSessions{snap: session.Snapshot{State: session.StateAnonymous}},
		api:      &fakeAuthAPI{},
	}
	callbacks := callback.New(f.sessions, navfakes.NewFakeNavigator(),
		callback.WithSleeper(func(time.Duration) {}))

	srv, err := server.New(config.New(), f.sessions, f.api, callbacks, options...)
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *serverFixture) authenticate(premium bool) {
	f.sessions.snap = session.Snapshot{
		State:       session.StateAuthenticated,
		AccessToken: "T1",
		User:        &session.User{LoginID: "alice", IsPremium: premium},
	}
}

func doJSON(t *testing.T, srv *server.Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestLogin_CommitsSession(t *testing.T) {
	f := setupServerFixture(t)

	rec := doJSON(t, f.server, http.MethodPost, server.RouteAPILogin,
		`{"loginId":"alice","password":"secret"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, f.sessions.loginCalls)

	var me struct {
		State session.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	require.Equal(t, session.StateAuthenticated, me.State)
}

func TestLogin_UpstreamRejectionKeepsStatus(t *testing.T) {
	f := setupServerFixture(t)
	f.api.loginErr = &apiclient.APIError{Status: http.StatusUnauthorized, Message: "bad credentials"}

	rec := doJSON(t, f.server, http.MethodPost, server.RouteAPILogin,
		`{"loginId":"alice","password":"wrong"}`)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Zero(t, f.sessions.loginCalls)
}

func TestLogin_MalformedBody(t *testing.T) {
	f := setupServerFixture(t)
	rec := doJSON(t, f.server, http.MethodPost, server.RouteAPILogin, `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	f := setupServerFixture(t)
	f.authenticate(false)

	rec := doJSON(t, f.server, http.MethodPost, server.RouteLogout, "")

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.True(t, f.sessions.loggedOut)
}

func TestMe_RequiresAuthentication(t *testing.T) {
	f := setupServerFixture(t)

	rec := doJSON(t, f.server, http.MethodGet, server.RouteAPIMe, "")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), nav.RouteLogin)
	require.Contains(t, rec.Header().Get("Location"), "returnTo=")
}

func TestMe_Authenticated(t *testing.T) {
	f := setupServerFixture(t)
	f.authenticate(false)

	rec := doJSON(t, f.server, http.MethodGet, server.RouteAPIMe, "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"alice"`)
	require.NotContains(t, rec.Body.String(), "T1", "access token never leaves the gateway")
}

func TestPremiumRoute_RedirectsNonPremium(t *testing.T) {
	f := setupServerFixture(t)
	f.authenticate(false)

	rec := doJSON(t, f.server, http.MethodGet, "/prompts/premium", "")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, nav.RoutePricing, rec.Header().Get("Location"))
}

func TestPremiumRoute_ServesPremium(t *testing.T) {
	f := setupServerFixture(t)
	f.authenticate(true)

	rec := doJSON(t, f.server, http.MethodGet, "/prompts/premium", "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCancelPayment_ForwardsReason(t *testing.T) {
	f := setupServerFixture(t)
	f.authenticate(true)

	rec := doJSON(t, f.server, http.MethodPost, server.RouteAPIPaymentCancel,
		`{"reason":"too expensive"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, f.api.cancelCalled)
	require.Equal(t, "too expensive", f.api.cancelReason)
}

func TestCallback_CommitsTokensAndRedirectsHome(t *testing.T) {
	f := setupServerFixture(t)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice",
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	rec := doJSON(t, f.server, http.MethodGet,
		nav.RouteLoginSuccess+"?accessToken="+token+"&refreshToken=R1", "")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, nav.RouteHome, rec.Header().Get("Location"))
	require.Equal(t, 1, f.sessions.loginCalls)
}

func TestCallback_ErrorRedirectsToErrorPage(t *testing.T) {
	f := setupServerFixture(t)

	rec := doJSON(t, f.server, http.MethodGet, nav.RouteLoginSuccess+"?error=access_denied", "")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, nav.RouteError, rec.Header().Get("Location"))
	require.Zero(t, f.sessions.loginCalls)
}

func TestAuthorize_RedirectsToProvider(t *testing.T) {
	registry, err := providers.NewRegistry("https://app.prome.test",
		map[providers.Provider]providers.Credentials{
			providers.Google: {ClientID: "google-client"},
		})
	require.NoError(t, err)
	f := setupServerFixture(t, server.WithProviderRegistry(registry))

	rec := doJSON(t, f.server, http.MethodGet, "/auth/google", "")

	require.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "accounts.google.com")

	var stateCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "prome_oauth_state" {
			stateCookie = c
		}
	}
	require.NotNil(t, stateCookie)
	require.NotEmpty(t, stateCookie.Value)
}

func TestAuthorize_UnknownProvider(t *testing.T) {
	registry, err := providers.NewRegistry("https://app.prome.test", nil)
	require.NoError(t, err)
	f := setupServerFixture(t, server.WithProviderRegistry(registry))

	rec := doJSON(t, f.server, http.MethodGet, "/auth/myspace", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthorize_NotConfigured(t *testing.T) {
	f := setupServerFixture(t)
	rec := doJSON(t, f.server, http.MethodGet, "/auth/google", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLoginPage_ListsProviders(t *testing.T) {
	registry, err := providers.NewRegistry("https://app.prome.test",
		map[providers.Provider]providers.Credentials{
			providers.Kakao: {ClientID: "kakao-client"},
		})
	require.NoError(t, err)
	f := setupServerFixture(t, server.WithProviderRegistry(registry))

	rec := doJSON(t, f.server, http.MethodGet, nav.RouteLogin+"?returnTo=%2Fprompts%2F42", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"/auth/kakao"`)
	require.Contains(t, rec.Body.String(), "/prompts/42")
}

func TestRateLimiter_RejectsBursts(t *testing.T) {
	f := setupServerFixture(t)

	var limited bool
	for i := 0; i < 100; i++ {
		rec := doJSON(t, f.server, http.MethodGet, nav.RouteHome, "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	require.True(t, limited, "sustained burst from one address is throttled")
}
