package guard

import (
	"net/http"
	"net/url"

	"github.com/promehq/go-prome-client/session"
)

// returnToParam carries the originally requested location through the login
// redirect.
const returnToParam = "returnTo"

// SessionReader is the slice of the session manager guards need.
type SessionReader interface {
	Snapshot() session.Snapshot
}

// AuthMiddleware redirects unauthenticated requests to the login entry
// point, carrying the requested location in the returnTo query parameter.
func AuthMiddleware(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := RequireAuth(sessions.Snapshot(), r.URL.RequestURI())
			if !decision.Allow {
				target := decision.RedirectTo
				if decision.ReturnTo != "" {
					target += "?" + returnToParam + "=" + url.QueryEscape(decision.ReturnTo)
				}
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PremiumMiddleware redirects unauthenticated requests to login and
// authenticated non-premium requests to the pricing page.
func PremiumMiddleware(sessions SessionReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := RequirePremium(sessions.Snapshot())
			if !decision.Allow {
				http.Redirect(w, r, decision.RedirectTo, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
