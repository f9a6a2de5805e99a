// Package apiclient is the HTTP client for the Prome API. Every request
// issued through it flows through an interceptor pipeline that attaches the
// stored bearer token and transparently survives one token expiry per call
// by refreshing and retrying.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/tokenstore"
	"github.com/rs/zerolog"
)

// API paths consumed by the session core.
const (
	PathLogin         = "/api/v1/auth/login"
	PathRefresh       = "/api/v1/auth/refresh"
	PathSubscription  = "/api/v1/users/me/subscription"
	PathCancelPayment = "/api/v1/payments/cancel"
)

const defaultTimeout = 10 * time.Second

// Client performs authorized calls against the Prome API.
type Client struct {
	baseURL   string
	http      *http.Client
	bare      *http.Client // no interceptor pipeline; used for refresh calls
	transport *authTransport
	log       zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the client logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTimeout overrides the transport-level request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
		c.bare.Timeout = d
	}
}

// WithBaseTransport replaces the underlying RoundTripper beneath the
// interceptor pipeline. Tests inject a scripted transport here.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.transport.base = rt
		c.bare.Transport = rt
	}
}

// New creates a Client rooted at baseURL. store supplies and receives bearer
// credentials; navigator is asked to send the application to the login entry
// point when a refresh fails terminally.
func New(baseURL string, store tokenstore.Store, navigator nav.Navigator, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[apiclient.New] baseURL is required")
	}
	if store == nil {
		return nil, errors.New("[apiclient.New] store is required")
	}
	if navigator == nil {
		return nil, errors.New("[apiclient.New] navigator is required")
	}

	c := &Client{
		baseURL: baseURL,
		bare:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	c.transport = &authTransport{
		base:      http.DefaultTransport,
		store:     store,
		navigator: navigator,
	}
	c.transport.refresh = c.doRefresh
	c.http = &http.Client{Transport: c.transport, Timeout: defaultTimeout}

	for _, opt := range options {
		opt(c)
	}
	c.transport.log = c.log
	return c, nil
}

// HTTPClient exposes the pipeline-wrapped client for callers that need to
// issue requests the typed methods don't cover.
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// OnSessionExpired registers fn to run when the refresh sequence fails
// terminally, right after the store's credentials are cleared. The session
// manager uses this to reset its in-memory state at the same point.
func (c *Client) OnSessionExpired(fn func()) {
	c.transport.onExpired = fn
}

// Login exchanges credentials for a token pair. Tokens are returned, not
// persisted; persisting is the session manager's job.
func (c *Client) Login(ctx context.Context, loginID, password string) (*LoginData, error) {
	if loginID == "" || password == "" {
		return nil, EmptyCredentialsErr
	}
	body := map[string]string{"loginId": loginID, "password": password}

	var data LoginData
	if err := c.postJSON(ctx, c.http, PathLogin, body, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Login] postJSON")
	}
	if data.AccessToken == "" {
		return nil, errors.New("[Client.Login] login response missing access token")
	}
	return &data, nil
}

// Refresh exchanges a refresh token for a new access token. The call is
// unauthenticated: the expiring access token is never attached.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	return c.doRefresh(ctx, refreshToken)
}

func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", NoRefreshTokenErr
	}

	var data RefreshData
	if err := c.postJSON(ctx, c.bare, PathRefresh, map[string]string{"refreshToken": refreshToken}, &data); err != nil {
		return "", errors.Wrap(err, "[Client.doRefresh] postJSON")
	}
	if data.AccessToken == "" {
		return "", RefreshRejectedErr
	}
	return data.AccessToken, nil
}

// Subscription fetches the current user's subscription record. The endpoint
// answers either with the standard envelope or with the bare object.
func (c *Client) Subscription(ctx context.Context) (*SubscriptionData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PathSubscription, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Subscription] NewRequest")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Client.Subscription] Do")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apiError(resp)
	}

	var envelope Envelope
	raw := json.RawMessage{}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, errors.Wrap(err, "[Client.Subscription] decode body")
	}

	var data SubscriptionData
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, errors.Wrap(err, "[Client.Subscription] decode envelope data")
		}
		return &data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "[Client.Subscription] decode bare object")
	}
	return &data, nil
}

// CancelPayment requests a subscription cancellation with the given reason.
func (c *Client) CancelPayment(ctx context.Context, reason string) error {
	if err := c.postJSON(ctx, c.http, PathCancelPayment, map[string]string{"reason": reason}, nil); err != nil {
		return errors.Wrap(err, "[Client.CancelPayment] postJSON")
	}
	return nil
}

// postJSON issues a JSON POST and decodes the envelope's data payload into
// out when out is non-nil.
func (c *Client) postJSON(ctx context.Context, client *http.Client, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "marshal body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "NewRequest")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}

	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if envelope.Data == nil {
		return errors.New("envelope missing data")
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return errors.Wrap(err, "decode data")
	}
	return nil
}

func apiError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	var envelope Envelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Message
	}
	return apiErr
}
