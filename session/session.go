// Package session holds the in-memory identity and subscription state for
// the lifetime of the running application. The Manager is the single writer
// of that state and keeps it synchronized with the persistent token store.
package session

import "time"

// State describes where a session sits in its lifecycle.
type State string

const (
	// StateAnonymous means no user is associated with the session.
	StateAnonymous State = "anonymous"
	// StatePendingSubscription means a user is present but the subscription
	// record has not resolved yet.
	StatePendingSubscription State = "authenticated_pending_subscription"
	// StateAuthenticated means both user and subscription are resolved.
	StateAuthenticated State = "authenticated"
)

// User is the identity record for the signed-in user.
type User struct {
	LoginID     string `json:"loginId"`
	DisplayName string `json:"displayName"`
	IsPremium   bool   `json:"isPremium"`
}

// Subscription is the entitlement record. EndDate is absent for
// non-premium users.
type Subscription struct {
	IsPremium bool       `json:"isPremium"`
	EndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
}

// Valid reports whether the record can stand in for a remote fetch: a
// premium subscription whose end date is still in the future.
func (s Subscription) Valid(now time.Time) bool {
	return s.IsPremium && s.EndDate != nil && s.EndDate.After(now)
}

// Snapshot is a read-only copy of the session state at one point in time.
type Snapshot struct {
	State        State
	AccessToken  string
	User         *User
	Subscription *Subscription
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// Premium reports whether the signed-in user holds a premium entitlement.
func (s Snapshot) Premium() bool {
	return s.User != nil && s.User.IsPremium
}
