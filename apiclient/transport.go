package apiclient

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/tokenstore"
	"github.com/rs/zerolog"
)

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-Id"
	bearerPrefix        = "Bearer "
)

// retriedKey marks a request that has already been through one
// refresh-and-retry cycle. The one-shot flag lives in the request context so
// it travels with the request and dies with it.
type retriedKey struct{}

// refreshFunc exchanges a refresh token for a new access token. It must run
// unauthenticated (no bearer attached).
type refreshFunc func(ctx context.Context, refreshToken string) (string, error)

// authTransport is the interceptor pipeline around request dispatch:
// it injects the stored bearer token into every outgoing request and
// recovers from a single 401 per request by refreshing and retrying.
//
// Refreshes are intentionally not coalesced across concurrently in-flight
// requests; each 401'd request runs its own refresh call.
type authTransport struct {
	base      http.RoundTripper
	store     tokenstore.Store
	navigator nav.Navigator
	refresh   refreshFunc
	onExpired func()
	log       zerolog.Logger
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	if out.Header.Get(headerRequestID) == "" {
		out.Header.Set(headerRequestID, uuid.New().String())
	}
	if token, err := t.store.Get(tokenstore.KeyAccessToken); err == nil && token != "" {
		out.Header.Set(headerAuthorization, bearerPrefix+token)
	}

	resp, err := t.base.RoundTrip(out)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Repeated 401 on an already-retried request propagates unchanged.
	if req.Context().Value(retriedKey{}) != nil {
		return resp, nil
	}

	// A request whose body cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		t.log.Warn().Str("path", req.URL.Path).Msg("401 on non-replayable request, not retrying")
		return resp, nil
	}

	refreshToken, err := t.store.Get(tokenstore.KeyRefreshToken)
	if err != nil || refreshToken == "" {
		t.log.Debug().Str("path", req.URL.Path).Msg("401 with no refresh token, ending session")
		t.terminate()
		return resp, nil
	}

	newToken, err := t.refresh(req.Context(), refreshToken)
	if err != nil {
		drain(resp)
		t.log.Warn().Err(err).Str("path", req.URL.Path).Msg("token refresh failed, ending session")
		t.terminate()
		return nil, err
	}

	if err := t.store.Set(tokenstore.KeyAccessToken, newToken); err != nil {
		drain(resp)
		return nil, err
	}

	drain(resp)
	retry := req.Clone(context.WithValue(req.Context(), retriedKey{}, true))
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	if retry.Header.Get(headerRequestID) == "" {
		retry.Header.Set(headerRequestID, out.Header.Get(headerRequestID))
	}
	retry.Header.Set(headerAuthorization, bearerPrefix+newToken)

	t.log.Debug().Str("path", req.URL.Path).Msg("retrying request with refreshed token")
	return t.base.RoundTrip(retry)
}

// terminate ends the session: credentials are cleared, the in-memory session
// is told to reset, and the application is sent to the login entry point.
func (t *authTransport) terminate() {
	tokenstore.ClearCredentials(t.store)
	if t.onExpired != nil {
		t.onExpired()
	}
	t.navigator.NavigateTo(nav.RouteLogin)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
