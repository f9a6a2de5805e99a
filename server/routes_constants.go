package server

// Route path constants
// Page routes live in the nav package so guards and handlers share them;
// the gateway-only routes are defined here.
const (
	RouteLogout               = "/logout"
	RouteLoginSuccessProvider = "/login/success/{provider}"
	RouteAuthorize            = "/auth/{provider}"

	// API Routes
	RouteAPILogin               = "/api/login"
	RouteAPIMe                  = "/api/me"
	RouteAPISubscriptionRefresh = "/api/subscription/refresh"
	RouteAPIPaymentCancel       = "/api/payments/cancel"

	// Content Routes
	RoutePrompts        = "/prompts/{id}"
	RoutePromptsPremium = "/prompts/premium"
)
