package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/promehq/go-prome-client/apiclient"
	"github.com/promehq/go-prome-client/tokenstore"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

const defaultFetchTimeout = 10 * time.Second

// SubscriptionAPI is the slice of the API client the manager needs.
type SubscriptionAPI interface {
	Subscription(ctx context.Context) (*apiclient.SubscriptionData, error)
}

// Manager owns the in-memory Session. All mutation goes through it; other
// components read snapshots or subscribe to changes.
type Manager struct {
	store tokenstore.Store
	api   SubscriptionAPI
	log   zerolog.Logger

	fetchTimeout time.Duration
	nowTime      func() time.Time

	lock         sync.RWMutex
	accessToken  string
	user         *User
	subscription *Subscription

	watcherLock sync.Mutex
	watcherSeq  int
	watchers    map[int]func(Snapshot)
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) { m.nowTime = nowFunc }
}

// WithFetchTimeout bounds each subscription fetch.
func WithFetchTimeout(d time.Duration) ManagerOption {
	return func(m *Manager) { m.fetchTimeout = d }
}

// NewManager creates a session Manager over the given store and API client.
func NewManager(store tokenstore.Store, api SubscriptionAPI, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if api == nil {
		return nil, errors.New("[NewManager] subscription API is required")
	}

	m := &Manager{
		store:        store,
		api:          api,
		log:          zerolog.Nop(),
		fetchTimeout: defaultFetchTimeout,
		nowTime:      NowTimeFunc,
		watchers:     make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// Login populates the session from a fresh token pair and user record,
// persists them, and kicks off the asynchronous subscription refinement.
// The returned Refinement resolves when the subscription does; callers may
// ignore it. A storage write failure rolls everything back and is returned
// so the caller can route to an error surface.
func (m *Manager) Login(accessToken, refreshToken string, user User) (*Refinement, error) {
	if accessToken == "" {
		return nil, errors.New("[Manager.Login] access token is required")
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] marshal user")
	}

	// Persist first: if durable storage is unavailable the session must not
	// come up half-initialized.
	if err := m.store.Set(tokenstore.KeyAccessToken, accessToken); err != nil {
		return nil, errors.Wrap(err, "[Manager.Login] persist access token")
	}
	if refreshToken != "" {
		if err := m.store.Set(tokenstore.KeyRefreshToken, refreshToken); err != nil {
			tokenstore.ClearCredentials(m.store)
			return nil, errors.Wrap(err, "[Manager.Login] persist refresh token")
		}
	}
	if err := m.store.Set(tokenstore.KeyUser, string(userJSON)); err != nil {
		tokenstore.ClearSession(m.store)
		return nil, errors.Wrap(err, "[Manager.Login] persist user")
	}

	m.lock.Lock()
	m.accessToken = accessToken
	m.user = &user
	m.subscription = nil
	m.lock.Unlock()
	m.notify()

	m.log.Info().Str("loginId", user.LoginID).Msg("session established")
	return m.spawnSubscriptionFetch(), nil
}

// Logout clears the in-memory session and deletes every session-owned key
// from the store. It always succeeds.
func (m *Manager) Logout() {
	m.lock.Lock()
	m.accessToken = ""
	m.user = nil
	m.subscription = nil
	m.lock.Unlock()

	tokenstore.ClearSession(m.store)
	m.notify()
	m.log.Info().Msg("session cleared")
}

// SessionExpired resets the in-memory session after the request pipeline
// cleared the store on a terminal refresh failure. Wire it into
// apiclient.Client.OnSessionExpired so memory and store clear at the same
// point.
func (m *Manager) SessionExpired() {
	m.lock.Lock()
	m.accessToken = ""
	m.user = nil
	m.subscription = nil
	m.lock.Unlock()
	m.notify()
	m.log.Warn().Msg("session expired")
}

// RefreshSubscription re-runs the subscription fetch on demand, e.g. after
// a purchase.
func (m *Manager) RefreshSubscription() *Refinement {
	return m.spawnSubscriptionFetch()
}

// Rehydrate restores the session from the store on startup. It reports
// whether a session was restored; a half-written store (token without user,
// the mid-redirect state) leaves the session empty.
func (m *Manager) Rehydrate() (*Refinement, bool) {
	accessToken, err := m.store.Get(tokenstore.KeyAccessToken)
	if err != nil || accessToken == "" {
		return nil, false
	}
	userJSON, err := m.store.Get(tokenstore.KeyUser)
	if err != nil || userJSON == "" {
		return nil, false
	}

	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		m.log.Warn().Err(err).Msg("stored user record unreadable, staying anonymous")
		return nil, false
	}

	m.lock.Lock()
	m.accessToken = accessToken
	m.user = &user
	m.subscription = nil
	m.lock.Unlock()
	m.notify()

	m.log.Info().Str("loginId", user.LoginID).Msg("session rehydrated")
	return m.spawnSubscriptionFetch(), true
}

// Snapshot returns a read-only copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.lock.RLock()
	defer m.lock.RUnlock()

	snap := Snapshot{State: StateAnonymous, AccessToken: m.accessToken}
	if m.user != nil {
		u := *m.user
		snap.User = &u
		snap.State = StatePendingSubscription
	}
	if m.subscription != nil {
		s := *m.subscription
		snap.Subscription = &s
		if snap.User != nil {
			snap.State = StateAuthenticated
		}
	}
	return snap
}

// SubscribeFunc registers fn to run on every session state change. The
// returned function unsubscribes.
func (m *Manager) SubscribeFunc(fn func(Snapshot)) func() {
	m.watcherLock.Lock()
	m.watcherSeq++
	id := m.watcherSeq
	m.watchers[id] = fn
	m.watcherLock.Unlock()

	return func() {
		m.watcherLock.Lock()
		delete(m.watchers, id)
		m.watcherLock.Unlock()
	}
}

func (m *Manager) notify() {
	snap := m.Snapshot()

	m.watcherLock.Lock()
	fns := make([]func(Snapshot), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.watcherLock.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
