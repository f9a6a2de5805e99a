// Package nav defines the application route surface relevant to session
// handling and the Navigator contract through which session components
// request navigation. Components never touch the HTTP layer directly; they
// ask a Navigator so redirects stay observable and testable.
package nav

// Route path constants
// All session-relevant routes are defined here to ensure consistency and
// prevent typos.
const (
	RouteHome    = "/"
	RouteLogin   = "/login"
	RoutePricing = "/pricing"
	RouteError   = "/error"

	// OAuth redirect landings. Provider-specific variants hang off the
	// success route, e.g. /login/success/google.
	RouteLoginSuccess = "/login/success"
)

// Navigator performs an application-level navigation. Implementations may
// issue an HTTP redirect, print a URL, or just record the request.
type Navigator interface {
	NavigateTo(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) NavigateTo(route string) { f(route) }
