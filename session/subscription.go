package session

import (
	"context"
	"encoding/json"

	"github.com/promehq/go-prome-client/tokenstore"
)

// spawnSubscriptionFetch runs the subscription fetch in the background and
// returns its Refinement. The fetch never fails outward: on any error it
// degrades to a still-valid cached record, then to the non-premium default.
func (m *Manager) spawnSubscriptionFetch() *Refinement {
	r := newRefinement()
	go func() {
		sub := m.fetchSubscription()
		m.applySubscription(sub)
		r.complete(sub)
	}()
	return r
}

func (m *Manager) fetchSubscription() Subscription {
	now := m.nowTime()

	cached, haveCache := m.cachedSubscription()
	if haveCache && cached.Valid(now) {
		m.log.Debug().Msg("using cached subscription")
		return cached
	}

	ctx, cancel := context.WithTimeout(context.Background(), m.fetchTimeout)
	defer cancel()

	data, err := m.api.Subscription(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("subscription fetch failed")
		if haveCache && cached.Valid(m.nowTime()) {
			return cached
		}
		return Subscription{IsPremium: false}
	}

	sub := Subscription{IsPremium: data.IsPremium, EndDate: data.SubscriptionEndDate}
	m.writeSubscriptionCache(sub)
	return sub
}

func (m *Manager) cachedSubscription() (Subscription, bool) {
	raw, err := m.store.Get(tokenstore.KeySubscriptionCache)
	if err != nil || raw == "" {
		return Subscription{}, false
	}
	var sub Subscription
	if err := json.Unmarshal([]byte(raw), &sub); err != nil {
		return Subscription{}, false
	}
	return sub, true
}

func (m *Manager) writeSubscriptionCache(sub Subscription) {
	raw, err := json.Marshal(sub)
	if err != nil {
		return
	}
	if err := m.store.Set(tokenstore.KeySubscriptionCache, string(raw)); err != nil {
		m.log.Debug().Err(err).Msg("subscription cache write failed")
	}
}

// applySubscription folds a resolved subscription into the session. A
// session that went anonymous while the fetch was in flight is left alone.
func (m *Manager) applySubscription(sub Subscription) {
	m.lock.Lock()
	if m.user == nil {
		m.lock.Unlock()
		return
	}
	s := sub
	m.subscription = &s
	m.user.IsPremium = sub.IsPremium
	m.lock.Unlock()
	m.notify()
}
