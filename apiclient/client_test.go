package apiclient_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/promehq/go-prome-client/apiclient"
	"github.com/stretchr/testify/require"
)

func TestLogin_Success(t *testing.T) {
	f := setupTransportFixture(t)
	f.transport.handle(apiclient.PathLogin, func(int) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"success":true,"data":{"accessToken":"A1","refreshToken":"R1"}}`), nil
	})

	data, err := f.client.Login(context.Background(), "alice", "password123")
	require.NoError(t, err)
	require.Equal(t, "A1", data.AccessToken)
	require.Equal(t, "R1", data.RefreshToken)

	reqs := f.transport.recorded(apiclient.PathLogin)
	require.Len(t, reqs, 1)
	require.Contains(t, reqs[0].Body, `"loginId":"alice"`)
}

func TestLogin_EmptyCredentials(t *testing.T) {
	f := setupTransportFixture(t)

	_, err := f.client.Login(context.Background(), "", "password123")
	require.ErrorIs(t, err, apiclient.EmptyCredentialsErr)
	require.Empty(t, f.transport.recorded(apiclient.PathLogin))
}

func TestLogin_BadCredentials(t *testing.T) {
	f := setupTransportFixture(t)
	f.transport.handle(apiclient.PathLogin, func(int) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest,
			`{"success":false,"message":"wrong password"}`), nil
	})

	_, err := f.client.Login(context.Background(), "alice", "nope")
	require.Error(t, err)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadRequest, apiErr.Status)
	require.Equal(t, "wrong password", apiErr.Message)
}

func TestRefresh_MissingToken(t *testing.T) {
	f := setupTransportFixture(t)

	_, err := f.client.Refresh(context.Background(), "")
	require.ErrorIs(t, err, apiclient.NoRefreshTokenErr)
}

func TestSubscription_EnvelopeBody(t *testing.T) {
	f := setupTransportFixture(t)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	f.transport.handle(apiclient.PathSubscription, func(int) (*http.Response, error) {
		return jsonResponse(http.StatusOK,
			`{"success":true,"data":{"isPremium":true,"subscriptionEndDate":"2026-12-31T00:00:00Z"}}`), nil
	})

	sub, err := f.client.Subscription(context.Background())
	require.NoError(t, err)
	require.True(t, sub.IsPremium)
	require.NotNil(t, sub.SubscriptionEndDate)
	require.True(t, end.Equal(*sub.SubscriptionEndDate))
}

func TestSubscription_BareObjectBody(t *testing.T) {
	f := setupTransportFixture(t)
	f.transport.handle(apiclient.PathSubscription, func(int) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"isPremium":false}`), nil
	})

	sub, err := f.client.Subscription(context.Background())
	require.NoError(t, err)
	require.False(t, sub.IsPremium)
	require.Nil(t, sub.SubscriptionEndDate)
}

func TestCancelPayment(t *testing.T) {
	f := setupTransportFixture(t)
	f.transport.handle(apiclient.PathCancelPayment, func(int) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true}`), nil
	})

	err := f.client.CancelPayment(context.Background(), "too expensive")
	require.NoError(t, err)

	reqs := f.transport.recorded(apiclient.PathCancelPayment)
	require.Len(t, reqs, 1)
	require.Contains(t, reqs[0].Body, `"reason":"too expensive"`)
}

func TestNew_Validation(t *testing.T) {
	f := setupTransportFixture(t)

	_, err := apiclient.New("", f.store, f.navigator)
	require.Error(t, err)
	require.Contains(t, err.Error(), "baseURL is required")

	_, err = apiclient.New(testBaseURL, nil, f.navigator)
	require.Error(t, err)
	require.Contains(t, err.Error(), "store is required")

	_, err = apiclient.New(testBaseURL, f.store, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "navigator is required")
}
