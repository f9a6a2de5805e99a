package tokenstore_test

import (
	"testing"

	"github.com/promehq/go-prome-client/tokenstore"
	"github.com/promehq/go-prome-client/tokenstore/storefakes"
	"github.com/stretchr/testify/require"
)

var testSalt = []byte("0123456789abcdef")

func TestSealed_RoundTrip(t *testing.T) {
	inner := storefakes.NewFakeStore()
	sealed, err := tokenstore.NewSealed(inner, []byte("machine-secret"), testSalt)
	require.NoError(t, err)

	err = sealed.Set(tokenstore.KeyAccessToken, "token-value-1")
	require.NoError(t, err)

	got, err := sealed.Get(tokenstore.KeyAccessToken)
	require.NoError(t, err)
	require.Equal(t, "token-value-1", got)

	// The inner store must never see the plaintext.
	raw, err := inner.Get(tokenstore.KeyAccessToken)
	require.NoError(t, err)
	require.NotEqual(t, "token-value-1", raw)
	require.NotContains(t, raw, "token-value-1")
}

func TestSealed_MissingKey(t *testing.T) {
	sealed, err := tokenstore.NewSealed(storefakes.NewFakeStore(), []byte("s"), testSalt)
	require.NoError(t, err)

	_, err = sealed.Get(tokenstore.KeyRefreshToken)
	require.ErrorIs(t, err, tokenstore.ErrNotFound)
}

func TestSealed_WrongSecretFailsOpen(t *testing.T) {
	inner := storefakes.NewFakeStore()

	sealed, err := tokenstore.NewSealed(inner, []byte("secret-a"), testSalt)
	require.NoError(t, err)
	require.NoError(t, sealed.Set(tokenstore.KeyAccessToken, "token-value-1"))

	other, err := tokenstore.NewSealed(inner, []byte("secret-b"), testSalt)
	require.NoError(t, err)

	_, err = other.Get(tokenstore.KeyAccessToken)
	require.Error(t, err)
}

func TestSealed_ShortSalt(t *testing.T) {
	_, err := tokenstore.NewSealed(storefakes.NewFakeStore(), []byte("s"), []byte("short"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "salt too short")
}

func TestClearCredentials(t *testing.T) {
	store := storefakes.NewFakeStore()
	require.NoError(t, store.Set(tokenstore.KeyAccessToken, "a"))
	require.NoError(t, store.Set(tokenstore.KeyRefreshToken, "r"))
	require.NoError(t, store.Set(tokenstore.KeyUser, "u"))

	tokenstore.ClearCredentials(store)

	require.False(t, store.Has(tokenstore.KeyAccessToken))
	require.False(t, store.Has(tokenstore.KeyRefreshToken))
	require.True(t, store.Has(tokenstore.KeyUser), "user record survives credential clearing")

	tokenstore.ClearSession(store)
	require.False(t, store.Has(tokenstore.KeyUser))
}
