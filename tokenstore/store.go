// Package tokenstore holds the durable key/value storage backing the client
// session: bearer credentials, the serialized user record, and opportunistic
// caches. It is a dumb durable map; no validation or expiry tracking happens
// at this layer.
package tokenstore

import "errors"

// Well-known storage keys. The session manager and the refresh step of the
// request pipeline are the only writers; any component may read.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"

	// Cache keys read opportunistically by the subscription fetch.
	KeySubscriptionCache = "prome_subscription"
	KeyTicketsCache      = "prome_tickets"
)

var (
	ErrNotFound = errors.New("tokenstore: key not found")
)

// Store is the contract for durable per-client key/value storage. Values
// survive process restarts. Last writer wins; there is no transaction or
// lock discipline across keys.
type Store interface {
	// Get returns the value for key, or ErrNotFound when absent.
	Get(key string) (string, error)
	// Set writes the value for key, overwriting any previous value.
	Set(key, value string) error
	// Remove deletes the value for key. Removing an absent key is not an
	// error.
	Remove(key string) error
}

// ClearCredentials removes the access and refresh tokens from the store.
// Used by the request pipeline when a refresh fails terminally.
func ClearCredentials(s Store) {
	_ = s.Remove(KeyAccessToken)
	_ = s.Remove(KeyRefreshToken)
}

// ClearSession removes every session-owned key: credentials plus the
// serialized user record.
func ClearSession(s Store) {
	ClearCredentials(s)
	_ = s.Remove(KeyUser)
}
