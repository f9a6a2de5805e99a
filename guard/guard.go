// Package guard implements navigation-time checks over the current session
// state. Guards are pure synchronous functions of a session snapshot; the
// middleware adapters translate their decisions into HTTP redirects.
package guard

import (
	"github.com/promehq/go-prome-client/nav"
	"github.com/promehq/go-prome-client/session"
)

// Decision is the outcome of evaluating a guard for a navigation attempt.
type Decision struct {
	// Allow is true when the guarded content may render.
	Allow bool
	// RedirectTo is the route to send the user to when Allow is false.
	RedirectTo string
	// ReturnTo remembers the originally requested location so login can
	// send the user back afterward. Only the authentication guard sets it.
	ReturnTo string
}

// RequireAuth gates content on an authenticated session. Unauthenticated
// navigation redirects to the login entry point, remembering where the
// user was headed.
func RequireAuth(snap session.Snapshot, requested string) Decision {
	if !snap.Authenticated() {
		return Decision{RedirectTo: nav.RouteLogin, ReturnTo: requested}
	}
	return Decision{Allow: true}
}

// RequirePremium gates content on a premium entitlement. Unauthenticated
// navigation redirects to login; authenticated non-premium navigation
// redirects to the pricing page.
func RequirePremium(snap session.Snapshot) Decision {
	if !snap.Authenticated() {
		return Decision{RedirectTo: nav.RouteLogin}
	}
	if !snap.Premium() {
		return Decision{RedirectTo: nav.RoutePricing}
	}
	return Decision{Allow: true}
}
